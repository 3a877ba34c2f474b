package sentiment

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/pscheid92/socialsent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockClassifier struct {
	mu         sync.Mutex
	classifyFn func(ctx context.Context, text string) (domain.Classification, error)
	seen       []string
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	m.mu.Lock()
	m.seen = append(m.seen, text)
	m.mu.Unlock()
	if m.classifyFn != nil {
		return m.classifyFn(ctx, text)
	}
	return domain.Classification{Label: "positive", Confidence: 0.5}, nil
}

type mockSource struct {
	classifier domain.Classifier
	err        error
}

func (m *mockSource) Get(context.Context) (domain.Classifier, error) {
	return m.classifier, m.err
}

func fixedClassifier(label string, confidence float64) *mockClassifier {
	return &mockClassifier{
		classifyFn: func(context.Context, string) (domain.Classification, error) {
			return domain.Classification{Label: label, Confidence: confidence}, nil
		},
	}
}

func newTestAnalyzer(t *testing.T, clf domain.Classifier) *Analyzer {
	t.Helper()
	return NewAnalyzer(&mockSource{classifier: clf}, newTestScorer(t))
}

func TestPredict_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		classifier     *mockClassifier
		wantLabel      domain.Label
		wantConfidence float64
		wantDetails    int
	}{
		{
			name:           "irony overrides positive reading",
			text:           "Ürün gayet iyi (!)",
			classifier:     fixedClassifier("positive", 0.99),
			wantLabel:      domain.LabelNegative,
			wantConfidence: 0.51,
			wantDetails:    1,
		},
		{
			name:           "insult clamps to minus one",
			text:           "Bok gibi bir film.",
			classifier:     fixedClassifier("positive", 1.0),
			wantLabel:      domain.LabelNegative,
			wantConfidence: 1.0,
			wantDetails:    1,
		},
		{
			name:           "not bad idiom lifts a negative reading",
			text:           "Fena değil aslında.",
			classifier:     fixedClassifier("negative", 0.8),
			wantLabel:      domain.LabelPositive,
			wantConfidence: 0.7,
			wantDetails:    1,
		},
		{
			name:           "positive emoji add to classifier score",
			text:           "Bayıldım 😍😍",
			classifier:     fixedClassifier("positive", 0.3),
			wantLabel:      domain.LabelPositive,
			wantConfidence: 0.7,
			wantDetails:    1,
		},
		{
			name:           "clamps at plus one",
			text:           "Fena değil 🔥",
			classifier:     fixedClassifier("positive", 0.9),
			wantLabel:      domain.LabelPositive,
			wantConfidence: 1.0,
			wantDetails:    2,
		},
		{
			name:           "label comparison ignores case",
			text:           "güzel",
			classifier:     fixedClassifier("POSITIVE", 0.6),
			wantLabel:      domain.LabelPositive,
			wantConfidence: 0.6,
			wantDetails:    0,
		},
		{
			name:           "unknown label counts as negative",
			text:           "güzel",
			classifier:     fixedClassifier("LABEL_1", 0.6),
			wantLabel:      domain.LabelNegative,
			wantConfidence: 0.6,
			wantDetails:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, tt.classifier)

			res, err := a.Predict(context.Background(), tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLabel, res.Label)
			assert.InDelta(t, tt.wantConfidence, res.Confidence, 1e-9)
			assert.Len(t, res.HeuristicDetails, tt.wantDetails)
			assert.Equal(t, tt.text, res.OriginalText)
		})
	}
}

func TestPredict_ZeroFusedScoreIsNegative(t *testing.T) {
	// 0.4 from the classifier cancels two negative emoji exactly.
	a := newTestAnalyzer(t, fixedClassifier("positive", 0.4))

	p, err := a.Analyze(context.Background(), "😭😭")
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.Fused)
	assert.Equal(t, domain.LabelNegative, p.Result.Label)
	assert.Equal(t, 0.0, p.Result.Confidence)
}

func TestPredict_URLOnlyFallsBack(t *testing.T) {
	clf := fixedClassifier("positive", 0.7)
	a := newTestAnalyzer(t, clf)

	p, err := a.Analyze(context.Background(), "http://x.com")
	require.NoError(t, err)

	assert.Equal(t, "http://x.com", p.Result.ProcessedText)
	assert.Equal(t, 0.0, p.Modifier)
	assert.Empty(t, p.Result.HeuristicDetails)
	assert.Equal(t, []string{"http://x.com"}, clf.seen)
}

func TestPredict_ClassifierSeesNormalizedText(t *testing.T) {
	clf := fixedClassifier("negative", 0.9)
	a := newTestAnalyzer(t, clf)

	res, err := a.Predict(context.Background(), "@ali http://link.com harika (!)")
	require.NoError(t, err)

	assert.Equal(t, []string{"harika (!)"}, clf.seen)
	assert.Equal(t, "harika (!)", res.ProcessedText)
	assert.Equal(t, "negative", res.ClassifierRawLabel)
	assert.Equal(t, 0.9, res.ClassifierRawConfidence)
}

func TestPredict_HeuristicsUseOriginalText(t *testing.T) {
	// The mention is gone before classification; the rules still see it.
	a := newTestAnalyzer(t, fixedClassifier("positive", 0.2))

	p, err := a.Analyze(context.Background(), "@rezalet süper")
	require.NoError(t, err)

	assert.Equal(t, "süper", p.Result.ProcessedText)
	assert.InDelta(t, -2.0, p.Modifier, 1e-9)
}

func TestPredict_ClampInvariant(t *testing.T) {
	texts := []string{
		"", "rezalet iğrenç çöp aptal", "Fena değil 😍😍😍😍😍 sorun yok",
		"(!) (!.)", "efsane mükemmel ötesi", "🤮🤮🤮🤮🤮🤮🤮🤮",
	}
	for _, conf := range []float64{0, 0.25, 0.5, 1} {
		for _, label := range []string{"positive", "negative"} {
			a := newTestAnalyzer(t, fixedClassifier(label, conf))
			for _, text := range texts {
				p, err := a.Analyze(context.Background(), text)
				require.NoError(t, err)

				assert.GreaterOrEqual(t, p.Fused, -1.0)
				assert.LessOrEqual(t, p.Fused, 1.0)
				assert.Equal(t, math.Abs(p.Fused), p.Result.Confidence)
				assert.Equal(t, p.Fused > 0, p.Result.Label == domain.LabelPositive)
			}
		}
	}
}

func TestPredict_ClassifierInitFailure(t *testing.T) {
	initErr := errors.New("model not found")
	a := NewAnalyzer(&mockSource{err: initErr}, newTestScorer(t))

	_, err := a.Predict(context.Background(), "merhaba")
	require.Error(t, err)
	assert.ErrorIs(t, err, initErr)
}

func TestPredict_ClassifierCallFailure(t *testing.T) {
	callErr := errors.New("inference server unreachable")
	clf := &mockClassifier{
		classifyFn: func(context.Context, string) (domain.Classification, error) {
			return domain.Classification{}, callErr
		},
	}
	a := newTestAnalyzer(t, clf)

	_, err := a.Predict(context.Background(), "merhaba")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrClassification)
	assert.ErrorIs(t, err, callErr)
}

func TestPredict_InvalidConfidence(t *testing.T) {
	for _, conf := range []float64{-0.1, 1.5, math.NaN()} {
		a := newTestAnalyzer(t, fixedClassifier("positive", conf))

		_, err := a.Predict(context.Background(), "merhaba")
		assert.ErrorIs(t, err, domain.ErrInvalidClassification, "confidence %v", conf)
	}
}

func TestPrediction_Clamped(t *testing.T) {
	a := newTestAnalyzer(t, fixedClassifier("negative", 0.5))

	p, err := a.Analyze(context.Background(), "Bok gibi")
	require.NoError(t, err)
	assert.True(t, p.Clamped())
	assert.InDelta(t, -2.5, p.Raw, 1e-9)

	p, err = a.Analyze(context.Background(), "idare eder")
	require.NoError(t, err)
	assert.False(t, p.Clamped())
}

func TestFuseAndDecide(t *testing.T) {
	assert.Equal(t, 1.0, Fuse(0.9, 2))
	assert.Equal(t, -1.0, Fuse(-0.9, -2))
	assert.InDelta(t, 0.3, Fuse(0.5, -0.2), 1e-9)

	label, conf := Decide(0)
	assert.Equal(t, domain.LabelNegative, label)
	assert.Equal(t, 0.0, conf)

	label, conf = Decide(0.01)
	assert.Equal(t, domain.LabelPositive, label)
	assert.Equal(t, 0.01, conf)

	label, conf = Decide(-0.3)
	assert.Equal(t, domain.LabelNegative, label)
	assert.Equal(t, 0.3, conf)
}

// Labelled regression cases with a classifier that always leans slightly the
// wrong way; the heuristics alone must produce the expected label.
func TestPredict_HeuristicCorrections(t *testing.T) {
	tests := []struct {
		text     string
		raw      string
		expected domain.Label
	}{
		{"Harika (!)", "positive", domain.LabelNegative},
		{"Hiç sevmedim 🤮", "positive", domain.LabelNegative},
		{"Bayıldım 😍😍😍", "negative", domain.LabelPositive},
		{"Fena değil aslında.", "negative", domain.LabelPositive},
		{"Tavsiye etmem, kaçın.", "positive", domain.LabelNegative},
		{"Bok gibi bir film.", "positive", domain.LabelNegative},
		{"Bu ürün beş para etmez.", "positive", domain.LabelNegative},
		{"Tam anlamıyla rezalet.", "positive", domain.LabelNegative},
		{"Lezzeti iğrençti.", "positive", domain.LabelNegative},
		{"Zıkkımın kökü.", "positive", domain.LabelNegative},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			a := newTestAnalyzer(t, fixedClassifier(tt.raw, 0.15))

			res, err := a.Predict(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Label)
		})
	}
}
