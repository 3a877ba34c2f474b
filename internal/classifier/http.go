package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/pscheid92/socialsent/internal/platform/retry"
)

const (
	backendHTTP = "http"

	// Sent once during initialization so a cold or broken endpoint fails startup.
	warmUpText = "Merhaba dünya"

	maxResponseBytes = 1 << 20
)

var errEmptyPrediction = errors.New("inference response contained no predictions")

// StatusError is a non-2xx answer from the inference endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference endpoint returned %d: %s", e.StatusCode, e.Body)
}

type HTTPConfig struct {
	URL         string
	Token       string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
	// InitialBackoff defaults to 200ms; RateLimitBackoff to 2s.
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
}

// HTTPClassifier calls a hosted transformer model over HTTP. Transient
// failures are retried with backoff and a circuit breaker stops hammering an
// endpoint that keeps failing.
type HTTPClassifier struct {
	cfg     HTTPConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	policy  retry.Policy
	metrics *metrics.ClassifierMetrics
}

var _ domain.Classifier = (*HTTPClassifier)(nil)

// NewHTTPClassifier creates the client. m may be nil.
func NewHTTPClassifier(cfg HTTPConfig, m *metrics.ClassifierMetrics) *HTTPClassifier {
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.RateLimitBackoff == 0 {
		cfg.RateLimitBackoff = 2 * time.Second
	}

	c := &HTTPClassifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: m,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A rejected input says nothing about the endpoint's health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
				m.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			}
		},
	})

	c.policy = retry.Policy{
		MaxAttempts:      cfg.MaxAttempts,
		InitialBackoff:   cfg.InitialBackoff,
		RateLimitBackoff: cfg.RateLimitBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Classifier request failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	return c
}

// NewHTTPFactory returns a Factory that builds an HTTPClassifier and proves
// it works with a warm-up request.
func NewHTTPFactory(cfg HTTPConfig, m *metrics.ClassifierMetrics) Factory {
	return func(ctx context.Context) (domain.Classifier, error) {
		c := NewHTTPClassifier(cfg, m)
		if _, err := c.Classify(ctx, warmUpText); err != nil {
			return nil, fmt.Errorf("warm-up request for model %s failed: %w", cfg.Model, err)
		}
		return c, nil
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	start := time.Now()

	classify := func(err error) retry.Action {
		if ctx.Err() != nil {
			return retry.Stop
		}
		return classifyError(err)
	}

	result, err := retry.Do(ctx, c.policy, classify, func(ctx context.Context) (domain.Classification, error) {
		v, err := c.breaker.Execute(func() (any, error) {
			return c.post(ctx, text)
		})
		if err != nil {
			return domain.Classification{}, err
		}
		return v.(domain.Classification), nil
	})

	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RequestDuration.WithLabelValues(backendHTTP, outcome).Observe(time.Since(start).Seconds())
	}
	return result, err
}

// BreakerState exposes the breaker for readiness checks and tests.
func (c *HTTPClassifier) BreakerState() gobreaker.State {
	return c.breaker.State()
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HTTPClassifier) post(ctx context.Context, text string) (domain.Classification, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Classification{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Classification{}, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(payload))}
	}

	return parsePrediction(payload)
}

// parsePrediction accepts both response shapes of text-classification
// endpoints, a flat list of label scores or a list nested once per input,
// and returns the highest scoring label.
func parsePrediction(payload []byte) (domain.Classification, error) {
	var scores []labelScore

	var nested [][]labelScore
	if err := json.Unmarshal(payload, &nested); err == nil {
		if len(nested) > 0 {
			scores = nested[0]
		}
	} else if err := json.Unmarshal(payload, &scores); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}

	if len(scores) == 0 {
		return domain.Classification{}, errEmptyPrediction
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return domain.Classification{Label: best.Label, Confidence: best.Score}, nil
}

func classifyError(err error) retry.Action {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return retry.Stop
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case statusErr.StatusCode >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}

	if errors.Is(err, errEmptyPrediction) {
		return retry.Stop
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return retry.Stop
	}

	// Transport errors: connection refused, reset, client timeout.
	return retry.Retry
}

func isClientError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
