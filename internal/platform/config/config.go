package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	BackendVader = "vader"
	BackendHTTP  = "http"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	ClassifierBackend     string        `env:"CLASSIFIER_BACKEND" default:"vader"`
	ClassifierURL         string        `env:"CLASSIFIER_URL"`
	ClassifierToken       string        `env:"CLASSIFIER_TOKEN"`
	ClassifierModel       string        `env:"CLASSIFIER_MODEL" default:"savasy/bert-base-turkish-sentiment-cased"`
	ClassifierTimeout     time.Duration `env:"CLASSIFIER_TIMEOUT" default:"10s"`
	ClassifierMaxAttempts int           `env:"CLASSIFIER_MAX_ATTEMPTS" default:"3"`

	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL" default:"1h"`
	MemoryCacheTTL time.Duration `env:"MEMORY_CACHE_TTL" default:"5m"`

	LexiconFile string `env:"LEXICON_FILE"`

	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" default:"40"`
	MaxBatchSize     int     `env:"MAX_BATCH_SIZE" default:"100"`
	BatchConcurrency int     `env:"BATCH_CONCURRENCY" default:"8"`
	MaxBodySize      string  `env:"MAX_BODY_SIZE" default:"1M"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field combinations. Call it again after overriding fields.
func (cfg *Config) Validate() error {
	switch cfg.ClassifierBackend {
	case BackendVader:
	case BackendHTTP:
		if cfg.ClassifierURL == "" {
			return errors.New("CLASSIFIER_URL is required when CLASSIFIER_BACKEND=http")
		}
	default:
		return fmt.Errorf("CLASSIFIER_BACKEND must be %q or %q, got %q", BackendVader, BackendHTTP, cfg.ClassifierBackend)
	}

	positive := map[string]int{
		"CLASSIFIER_MAX_ATTEMPTS": cfg.ClassifierMaxAttempts,
		"MAX_BATCH_SIZE":          cfg.MaxBatchSize,
		"BATCH_CONCURRENCY":       cfg.BatchConcurrency,
		"RATE_LIMIT_BURST":        cfg.RateLimitBurst,
	}
	for name, value := range positive {
		if value < 1 {
			return fmt.Errorf("%s must be at least 1", name)
		}
	}

	if cfg.ClassifierTimeout <= 0 {
		return errors.New("CLASSIFIER_TIMEOUT must be positive")
	}
	if cfg.RateLimitRPS <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive")
	}

	return nil
}

// IsDevelopment reports whether the service runs in a local development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
