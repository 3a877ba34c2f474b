package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/socialsent/internal/adapter/httpserver"
	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/adapter/redis"
	"github.com/pscheid92/socialsent/internal/app"
	"github.com/pscheid92/socialsent/internal/classifier"
	"github.com/pscheid92/socialsent/internal/platform/config"
	"github.com/pscheid92/socialsent/internal/platform/logging"
	"github.com/pscheid92/socialsent/internal/platform/version"
	"github.com/pscheid92/socialsent/internal/sentiment"
)

const (
	warmUpTimeout    = 2 * time.Minute
	evictionInterval = time.Minute
	shutdownTimeout  = 10 * time.Second
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupScorer(cfg *config.Config) *sentiment.Scorer {
	lexicon := sentiment.DefaultLexicon()
	if cfg.LexiconFile != "" {
		var err error
		lexicon, err = sentiment.LoadLexicon(cfg.LexiconFile)
		if err != nil {
			slog.Error("Failed to load lexicon", "path", cfg.LexiconFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Lexicon loaded", "path", cfg.LexiconFile)
	}

	scorer, err := sentiment.NewScorer(lexicon)
	if err != nil {
		slog.Error("Invalid lexicon", "error", err)
		os.Exit(1)
	}
	return scorer
}

// setupRedis returns nil when REDIS_URL is unset; the cache then runs in memory only.
func setupRedis(ctx context.Context, cfg *config.Config, rm *metrics.RedisMetrics, cm *metrics.ClassifierMetrics) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, classification cache is process-local")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.NewCircuitBreakerHook(cm), redis.NewMetricsHook(rm))
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "version", version.Get().Version, "env", cfg.AppEnv, "port", cfg.Port, "backend", cfg.ClassifierBackend)

	registry := metrics.NewRegistry()
	classifierMetrics := metrics.NewClassifierMetrics(registry)

	redisClient := setupRedis(context.Background(), cfg, metrics.NewRedisMetrics(registry), classifierMetrics)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Pass nil explicitly to avoid a typed-nil interface.
	var rdb goredis.Cmdable
	if redisClient != nil {
		rdb = redisClient
	}
	cache := redis.NewClassificationCache(rdb, cfg.CacheTTL, cfg.MemoryCacheTTL, metrics.NewCacheMetrics(registry), clock)
	stopEviction := cache.StartEvictionTimer(evictionInterval)
	defer stopEviction()

	factory, model, err := classifier.NewFactory(cfg, classifierMetrics)
	if err != nil {
		slog.Error("Failed to configure classifier", "error", err)
		os.Exit(1)
	}
	provider := classifier.NewProvider(classifier.WithCache(factory, cache, model))

	// Fail startup rather than serve a service that cannot classify.
	warmCtx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
	_, err = provider.Get(warmCtx)
	cancel()
	if err != nil {
		slog.Error("Failed to initialize classifier", "model", model, "error", err)
		os.Exit(1)
	}

	analyzer := sentiment.NewAnalyzer(provider, setupScorer(cfg))
	appSvc := app.NewService(analyzer, metrics.NewAnalysisMetrics(registry), app.Options{
		MaxBatchSize:     cfg.MaxBatchSize,
		BatchConcurrency: cfg.BatchConcurrency,
	}, clock)

	healthChecks := []httpserver.HealthCheck{
		{Name: "classifier", Check: func(context.Context) error {
			if !provider.Initialized() {
				return errors.New("classifier not initialized")
			}
			return nil
		}},
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, httpserver.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			return nil
		}})
	}

	srv := httpserver.NewServer(cfg, appSvc, registry, clock, healthChecks)
	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
