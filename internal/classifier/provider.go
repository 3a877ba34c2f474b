package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pscheid92/socialsent/internal/domain"
)

// Factory builds a ready-to-use classifier. It may perform network calls.
type Factory func(ctx context.Context) (domain.Classifier, error)

var errNilClassifier = errors.New("factory returned no classifier")

// Provider initializes the classifier on first use and hands out the same
// instance afterwards. The factory runs at most once; a failed initialization
// is remembered and returned to every later caller.
type Provider struct {
	factory Factory

	once       sync.Once
	classifier domain.Classifier
	err        error
	ready      atomic.Bool
}

var _ domain.ClassifierSource = (*Provider)(nil)

func NewProvider(factory Factory) *Provider {
	return &Provider{factory: factory}
}

// Get returns the shared classifier. Concurrent first calls block until the
// single initialization finishes.
func (p *Provider) Get(ctx context.Context) (domain.Classifier, error) {
	p.once.Do(func() { p.init(ctx) })
	return p.classifier, p.err
}

func (p *Provider) init(ctx context.Context) {
	start := time.Now()

	c, err := p.factory(ctx)
	if err == nil && c == nil {
		err = errNilClassifier
	}
	if err != nil {
		p.err = fmt.Errorf("%w: %w", domain.ErrClassifierInit, err)
		slog.ErrorContext(ctx, "Classifier initialization failed", "error", err)
		return
	}

	p.classifier = c
	p.ready.Store(true)
	slog.InfoContext(ctx, "Classifier initialized", "duration", time.Since(start))
}

// Initialized reports whether the classifier was built successfully.
func (p *Provider) Initialized() bool {
	return p.ready.Load()
}
