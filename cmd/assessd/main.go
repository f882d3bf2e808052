package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-assessment/internal/api/http"
	"github.com/mind-engage/mindengage-assessment/internal/bank"
	"github.com/mind-engage/mindengage-assessment/internal/config"
	"github.com/mind-engage/mindengage-assessment/internal/db"
	"github.com/mind-engage/mindengage-assessment/internal/exchange"
	"github.com/mind-engage/mindengage-assessment/internal/grading"
	"github.com/mind-engage/mindengage-assessment/internal/kv"
	"github.com/mind-engage/mindengage-assessment/internal/logging"
	"github.com/mind-engage/mindengage-assessment/internal/metrics"
	"github.com/mind-engage/mindengage-assessment/internal/quiz"
	"github.com/mind-engage/mindengage-assessment/internal/syncx"
)

func main() {
	cfg := config.FromEnv()

	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// --- Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	backend, err := openBackend(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("store open failed", zap.String("driver", cfg.KVDriver), zap.Error(err))
	}
	defer backend.close()

	// --- Metrics ---
	var m *metrics.Metrics
	reg := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	// --- Services ---
	bankStore := bank.New(backend.store, bank.WithLogger(logger.Named("bank")))
	quizzes := quiz.NewService(backend.store, bankStore, quiz.NewSampler(cfg.SamplerSeed),
		quiz.WithRecorder(backend.events),
		quiz.WithLogger(logger.Named("quiz")))
	grades := grading.NewService(backend.store, quizzes,
		grading.WithRecorder(backend.events),
		grading.WithMetrics(m),
		grading.WithLogger(logger.Named("grading")))
	xchg := exchange.NewService(bankStore, quizzes,
		exchange.WithRecorder(backend.events),
		exchange.WithMetrics(m),
		exchange.WithLogger(logger.Named("exchange")))

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(m.Middleware)
	r.Use(api.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	allowCredentials := cfg.Mode == config.ModeOnline
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	api.Mount(r, api.Services{
		Bank:     bankStore,
		Quizzes:  quizzes,
		Grading:  grades,
		Exchange: xchg,
	})
	api.Probes(r, backend.ping)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.Mode)), zap.String("store", cfg.KVDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// backend bundles the document store, the audit recorder and their cleanup.
type backend struct {
	store  kv.Store
	events syncx.Recorder
	ping   func() error
	close  func()
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	logEvents := syncx.LogRecorder{Log: logger.Named("events")}

	switch cfg.KVDriver {
	case "memory":
		return &backend{
			store:  kv.NewMemoryStore(),
			events: logEvents,
			close:  func() {},
		}, nil

	case "sqlite", "postgres":
		dbh, err := db.Open(ctx, db.Driver(cfg.KVDriver), cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  kv.NewSQLStore(dbh),
			events: syncx.NewEventRepo(dbh),
			ping:   pingSQL(dbh),
			close:  func() { _ = dbh.Close() },
		}, nil

	case "redis":
		client, err := kv.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  kv.NewRedisStore(client, "assessment:"),
			events: logEvents,
			ping: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(ctx).Err()
			},
			close: func() { _ = client.Close() },
		}, nil

	case "mongo":
		client, coll, err := kv.DialMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, "documents")
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  kv.NewMongoStore(coll),
			events: logEvents,
			ping: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(ctx, nil)
			},
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
	return nil, errors.Errorf("unsupported KV_DRIVER %q", cfg.KVDriver)
}

func pingSQL(dbh *sql.DB) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return dbh.PingContext(ctx)
	}
}
