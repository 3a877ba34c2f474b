package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/app"
	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/pscheid92/socialsent/internal/platform/config"
)

type appService interface {
	Analyze(ctx context.Context, text string) (app.Analysis, error)
	AnalyzeBatch(ctx context.Context, texts []string) ([]domain.SentimentResult, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	app    appService
	clock  clockwork.Clock

	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics
	wsMetrics   *metrics.WebSocketMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, reg *prometheus.Registry, clock clockwork.Clock, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		clock:        clock,
		registry:     reg,
		httpMetrics:  metrics.NewHTTPMetrics(reg),
		wsMetrics:    metrics.NewWebSocketMetrics(reg),
		healthChecks: healthChecks,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
