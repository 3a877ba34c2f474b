package domain

import (
	"context"
	"strings"
)

// Classification is the untouched output of the external classifier.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// IsPositive reports whether the classifier's label indicates positive sentiment.
func (c Classification) IsPositive() bool {
	return strings.EqualFold(c.Label, "positive")
}

// Signed returns the confidence with the sign of the label.
func (c Classification) Signed() float64 {
	if c.IsPositive() {
		return c.Confidence
	}
	return -c.Confidence
}

// Classifier is the binary sentiment model consumed as an opaque capability.
// Implementations must be deterministic for identical input and safe for
// concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// ClassifierSource hands out the process-wide classifier, initializing it on
// first use.
type ClassifierSource interface {
	Get(ctx context.Context) (Classifier, error)
}
