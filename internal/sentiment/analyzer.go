package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/pscheid92/socialsent/internal/domain"
)

const (
	minScore = -1.0
	maxScore = 1.0
)

// Prediction carries the result together with the intermediate values that
// produced it.
type Prediction struct {
	Result         domain.SentimentResult
	Classification domain.Classification
	Modifier       float64
	Raw            float64 // base + modifier, before clamping
	Fused          float64 // Raw clamped to [-1, 1]
	Firings        []Firing
}

// Clamped reports whether the fused score hit a bound.
func (p Prediction) Clamped() bool {
	return p.Raw != p.Fused
}

type Analyzer struct {
	classifiers domain.ClassifierSource
	scorer      *Scorer
}

func NewAnalyzer(classifiers domain.ClassifierSource, scorer *Scorer) *Analyzer {
	return &Analyzer{classifiers: classifiers, scorer: scorer}
}

// Predict classifies text and returns the fused result.
func (a *Analyzer) Predict(ctx context.Context, text string) (domain.SentimentResult, error) {
	p, err := a.Analyze(ctx, text)
	if err != nil {
		return domain.SentimentResult{}, err
	}
	return p.Result, nil
}

// Analyze runs the full pipeline: normalize, classify the normalized text,
// score heuristics on the original text, then fuse and clamp.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Prediction, error) {
	processed := Normalize(text)

	classifier, err := a.classifiers.Get(ctx)
	if err != nil {
		return Prediction{}, err
	}

	c, err := classifier.Classify(ctx, processed)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}
	if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
		return Prediction{}, fmt.Errorf("%w: %v", domain.ErrInvalidClassification, c.Confidence)
	}

	ev := a.scorer.Evaluate(text)
	for _, f := range ev.Firings {
		slog.DebugContext(ctx, "Heuristic rule fired", "rule", f.Rule, "hits", f.Hits, "delta", f.Delta)
	}

	raw := c.Signed() + ev.Modifier
	fused := Fuse(c.Signed(), ev.Modifier)
	label, confidence := Decide(fused)

	return Prediction{
		Result: domain.SentimentResult{
			Label:                   label,
			Confidence:              confidence,
			OriginalText:            text,
			ProcessedText:           processed,
			HeuristicDetails:        ev.Details,
			ClassifierRawLabel:      c.Label,
			ClassifierRawConfidence: c.Confidence,
		},
		Classification: c,
		Modifier:       ev.Modifier,
		Raw:            raw,
		Fused:          fused,
		Firings:        ev.Firings,
	}, nil
}

// Fuse adds the heuristic modifier to the classifier's signed confidence and
// clamps the sum to [-1, 1].
func Fuse(base, modifier float64) float64 {
	return math.Max(math.Min(base+modifier, maxScore), minScore)
}

// Decide maps a fused score to a label and confidence. Only a strictly
// positive score is POSITIVE; zero is NEGATIVE.
func Decide(fused float64) (domain.Label, float64) {
	label := domain.LabelNegative
	if fused > 0 {
		label = domain.LabelPositive
	}
	return label, math.Abs(fused)
}
