package httpserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/socialsent/internal/app"
	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/pscheid92/socialsent/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	analyzeFn      func(ctx context.Context, text string) (app.Analysis, error)
	analyzeBatchFn func(ctx context.Context, texts []string) ([]domain.SentimentResult, error)
}

func (m *mockAppService) Analyze(ctx context.Context, text string) (app.Analysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, text)
	}
	return app.Analysis{}, errors.New("not implemented")
}

func (m *mockAppService) AnalyzeBatch(ctx context.Context, texts []string) ([]domain.SentimentResult, error) {
	if m.analyzeBatchFn != nil {
		return m.analyzeBatchFn(ctx, texts)
	}
	return nil, errors.New("not implemented")
}

var fixedID = uuid.MustParse("6f1c8a52-7a0e-4c8e-9d51-3f0b3c1f4a10")

func echoResult(text string) domain.SentimentResult {
	return domain.SentimentResult{
		Label:                   domain.LabelPositive,
		Confidence:              0.8,
		OriginalText:            text,
		ProcessedText:           text,
		HeuristicDetails:        []string{},
		ClassifierRawLabel:      "positive",
		ClassifierRawConfidence: 0.8,
	}
}

// echoApp answers every text with a positive result that echoes it.
func echoApp() *mockAppService {
	return &mockAppService{
		analyzeFn: func(_ context.Context, text string) (app.Analysis, error) {
			return app.Analysis{ID: fixedID, Result: echoResult(text)}, nil
		},
		analyzeBatchFn: func(_ context.Context, texts []string) ([]domain.SentimentResult, error) {
			results := make([]domain.SentimentResult, len(texts))
			for i, text := range texts {
				results[i] = echoResult(text)
			}
			return results, nil
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "test",
		Port:           "0",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodySize:    "1K",
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewServer(cfg, app, prometheus.NewRegistry(), clockwork.NewFakeClock(), nil)
}

func withHealthChecks(srv *Server, checks ...HealthCheck) *Server {
	srv.healthChecks = checks
	return srv
}

// startTestServer serves the full middleware stack over a real listener.
func startTestServer(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)
	return ts
}
