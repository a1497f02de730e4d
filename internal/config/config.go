package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	FetchTimeout    time.Duration
	FetchWorkers    int
	HTTPAddr        string
	CollectInterval time.Duration
	CollectIDs      []string
	LogLevel        slog.Level
	UserAgent       string
	EnablePprof     bool
}

func Default() Config {
	return Config{
		RedisAddr:       "localhost:6379",
		CacheTTL:        24 * time.Hour,
		FetchTimeout:    30 * time.Second,
		FetchWorkers:    4,
		HTTPAddr:        "0.0.0.0:8080",
		CollectInterval: 24 * time.Hour,
		CollectIDs:      []string{"all"},
		LogLevel:        slog.LevelInfo,
	}
}

// LoadDotEnv loads .env files into the environment when present. A missing file is not an
// error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load reads the configuration from the environment. Malformed values keep their default
// and are logged.
func Load(logger *slog.Logger) Config {
	return load(os.LookupEnv, logger)
}

func load(lookup func(string) (string, bool), logger *slog.Logger) Config {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logger.Warn("invalid duration, using default", slog.String("key", key), slog.String("value", v), slog.Duration("default", *dst))
			return
		}
		*dst = d
	}

	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("USER_AGENT", &cfg.UserAgent)
	dur("CACHE_TTL", &cfg.CacheTTL)
	dur("FETCH_TIMEOUT", &cfg.FetchTimeout)
	dur("COLLECT_INTERVAL", &cfg.CollectInterval)

	if v, ok := lookup("FETCH_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logger.Warn("invalid worker count, using default", slog.String("value", v), slog.Int("default", cfg.FetchWorkers))
		} else {
			cfg.FetchWorkers = n
		}
	}

	if v, ok := lookup("COLLECT_EXCHANGES"); ok && v != "" {
		cfg.CollectIDs = SplitList(v)
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			logger.Warn("invalid log level, using info", slog.String("value", v))
			cfg.LogLevel = slog.LevelInfo
		}
	}

	if v, ok := lookup("ENABLE_PPROF"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ENABLE_PPROF, pprof stays off", slog.String("value", v))
		}
		cfg.EnablePprof = b
	}

	return cfg
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
