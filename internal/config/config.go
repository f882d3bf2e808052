package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	KVDriver string // memory|sqlite|postgres|redis|mongo
	DBDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	LogLevel string
	LogFile  string

	CORSOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int

	SamplerSeed    int64 // 0 = seeded from the clock
	MetricsEnabled bool
}

// FromEnv reads configuration from the environment, optionally layered over
// the file named by CONFIG_FILE.
func FromEnv() Config {
	v := viper.New()
	v.SetDefault("MODE", string(ModeOffline))
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("KV_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "assessment")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("SAMPLER_SEED", 0)
	v.SetDefault("METRICS_ENABLED", true)
	v.AutomaticEnv()

	if f := v.GetString("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		_ = v.ReadInConfig() // env still wins; a missing file is not fatal
	}

	mode := Mode(strings.ToLower(v.GetString("MODE")))
	if mode != ModeOnline {
		mode = ModeOffline
	}

	return Config{
		Mode:           mode,
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		KVDriver:       strings.ToLower(v.GetString("KV_DRIVER")),
		DBDSN:          v.GetString("DB_DSN"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDatabase:  v.GetString("MONGO_DATABASE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		CORSOrigins:    csv(v.GetString("CORS_ORIGINS")),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		SamplerSeed:    v.GetInt64("SAMPLER_SEED"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}
}

func csv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
