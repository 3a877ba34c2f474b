package classifier

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonreiter/govader"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/domain"
)

const (
	VaderModel   = "vader"
	backendVader = "vader"
)

// turkishValence extends VADER's English lexicon with common Turkish
// sentiment words so Turkish posts do not all score neutral.
var turkishValence = map[string]float64{
	"güzel":       2.0,
	"harika":      3.0,
	"mükemmel":    3.2,
	"süper":       2.6,
	"iyi":         1.9,
	"teşekkür":    1.8,
	"teşekkürler": 1.8,
	"sevdim":      2.3,
	"bayıldım":    2.8,
	"başarılı":    2.2,
	"hızlı":       1.0,
	"kötü":        -2.5,
	"berbat":      -3.1,
	"rezalet":     -3.2,
	"fena":        -1.8,
	"sorun":       -1.5,
	"sorunlu":     -1.8,
	"sıkıntı":     -1.6,
	"yavaş":       -1.2,
	"pahalı":      -1.1,
	"iğrenç":      -3.0,
	"nefret":      -3.0,
	"maalesef":    -1.2,
	"şikayet":     -1.7,
	"bozuk":       -2.0,
	"çöp":         -2.6,
}

// VaderClassifier runs VADER in process. The compound score's sign picks the
// label and its magnitude becomes the confidence.
type VaderClassifier struct {
	mu      sync.Mutex
	sia     *govader.SentimentIntensityAnalyzer
	metrics *metrics.ClassifierMetrics
}

var _ domain.Classifier = (*VaderClassifier)(nil)

// NewVaderClassifier builds the analyzer with the Turkish entries. m may be nil.
func NewVaderClassifier(m *metrics.ClassifierMetrics) *VaderClassifier {
	sia := govader.NewSentimentIntensityAnalyzer()
	for word, valence := range turkishValence {
		if _, exists := sia.Lexicon[word]; !exists {
			sia.Lexicon[word] = valence
		}
	}
	return &VaderClassifier{sia: sia, metrics: m}
}

// NewVaderFactory returns a Factory for the VADER backend.
func NewVaderFactory(m *metrics.ClassifierMetrics) Factory {
	return func(context.Context) (domain.Classifier, error) {
		return NewVaderClassifier(m), nil
	}
}

func (v *VaderClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		v.observe(time.Now(), "error")
		return domain.Classification{}, err
	}
	start := time.Now()

	// VADER lowercases with Unicode rules, which mangles the Turkish dotted I.
	folded := cases.Lower(language.Turkish).String(text)

	v.mu.Lock()
	scores := v.sia.PolarityScores(folded)
	v.mu.Unlock()

	v.observe(start, "success")

	label := "negative"
	if scores.Compound >= 0 {
		label = "positive"
	}
	return domain.Classification{
		Label:      label,
		Confidence: math.Min(math.Abs(scores.Compound), 1),
	}, nil
}

func (v *VaderClassifier) observe(start time.Time, outcome string) {
	if v.metrics != nil {
		v.metrics.RequestDuration.WithLabelValues(backendVader, outcome).Observe(time.Since(start).Seconds())
	}
}
