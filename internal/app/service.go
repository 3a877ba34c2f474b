package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/pscheid92/socialsent/internal/sentiment"
)

var (
	ErrEmptyBatch    = errors.New("batch contains no texts")
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)

// Analyzer runs the sentiment pipeline for one text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (sentiment.Prediction, error)
}

// Analysis is one prediction tagged with a request-scoped ID.
type Analysis struct {
	ID     uuid.UUID              `json:"id"`
	Result domain.SentimentResult `json:"result"`
}

type Options struct {
	MaxBatchSize     int
	BatchConcurrency int
}

type Service struct {
	analyzer Analyzer
	metrics  *metrics.AnalysisMetrics
	opts     Options
	clock    clockwork.Clock
}

// NewService creates the application layer service. m may be nil.
func NewService(analyzer Analyzer, m *metrics.AnalysisMetrics, opts Options, clock clockwork.Clock) *Service {
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	return &Service{
		analyzer: analyzer,
		metrics:  m,
		opts:     opts,
		clock:    clock,
	}
}

// Analyze predicts the sentiment of a single text.
func (s *Service) Analyze(ctx context.Context, text string) (Analysis, error) {
	result, err := s.predict(ctx, text)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{ID: uuid.New(), Result: result}, nil
}

// AnalyzeBatch predicts every text, preserving input order. The first failure
// cancels the remaining work and fails the whole batch.
func (s *Service) AnalyzeBatch(ctx context.Context, texts []string) ([]domain.SentimentResult, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.opts.MaxBatchSize > 0 && len(texts) > s.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(texts), s.opts.MaxBatchSize)
	}

	results := make([]domain.SentimentResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)
	for i, text := range texts {
		g.Go(func() error {
			result, err := s.predict(gctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) predict(ctx context.Context, text string) (domain.SentimentResult, error) {
	start := s.clock.Now()

	p, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		stage := failureStage(err)
		if s.metrics != nil {
			s.metrics.Failures.WithLabelValues(stage).Inc()
		}
		slog.ErrorContext(ctx, "Sentiment analysis failed", "stage", stage, "error", err)
		return domain.SentimentResult{}, err
	}

	if s.metrics != nil {
		s.metrics.Duration.Observe(s.clock.Since(start).Seconds())
		s.metrics.Predictions.WithLabelValues(string(p.Result.Label)).Inc()
		s.metrics.FusedScore.Observe(p.Fused)
		if p.Clamped() {
			s.metrics.Clamped.Inc()
		}
		for _, f := range p.Firings {
			s.metrics.RuleFirings.WithLabelValues(f.Rule).Inc()
		}
	}

	slog.DebugContext(ctx, "Sentiment analyzed",
		"label", p.Result.Label,
		"confidence", p.Result.Confidence,
		"classifier_label", p.Classification.Label,
		"modifier", p.Modifier,
	)
	return p.Result, nil
}

func failureStage(err error) string {
	switch {
	case errors.Is(err, domain.ErrClassifierInit):
		return "init"
	case errors.Is(err, domain.ErrClassification):
		return "classify"
	case errors.Is(err, domain.ErrInvalidClassification):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
