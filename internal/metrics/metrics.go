package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the assessment collectors. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	Submissions     *prometheus.CounterVec
	ObjectiveRatio  prometheus.Histogram
	Reviews         prometheus.Counter
	Similarity      *prometheus.CounterVec
	Exchange        *prometheus.CounterVec
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Graded quiz submissions by initial status.",
		}, []string{"status"}),
		ObjectiveRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assessment_objective_score_ratio",
			Help:    "objectiveScore / objectiveTotal per submission.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Reviews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assessment_rubric_reviews_total",
			Help: "Rubric reviews applied to grade records.",
		}),
		Similarity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_similarity_checks_total",
			Help: "Similarity heuristic runs by band.",
		}, []string{"level"}),
		Exchange: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_exchange_total",
			Help: "Exchange document exports and imports.",
		}, []string{"op", "result"}),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.ObjectiveRatio, m.Reviews, m.Similarity,
			m.Exchange, m.RequestCounter, m.RequestDuration)
	}
	return m
}

func (m *Metrics) ObserveSubmission(status string, objectiveScore, objectiveTotal float64) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(status).Inc()
	if objectiveTotal > 0 {
		m.ObjectiveRatio.Observe(objectiveScore / objectiveTotal)
	}
}

func (m *Metrics) ObserveReview() {
	if m == nil {
		return
	}
	m.Reviews.Inc()
}

func (m *Metrics) ObserveSimilarity(level string) {
	if m == nil {
		return
	}
	m.Similarity.WithLabelValues(level).Inc()
}

func (m *Metrics) ObserveExchange(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Exchange.WithLabelValues(op, result).Inc()
}

// unmatchedRoute labels requests no chi route claimed, keeping the label set
// bounded.
const unmatchedRoute = "unmatched"

// Middleware records request count and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
