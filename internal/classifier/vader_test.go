package classifier

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
)

func TestVaderClassifier(t *testing.T) {
	v := NewVaderClassifier(nil)

	tests := []struct {
		name     string
		text     string
		positive bool
	}{
		{"english positive", "This is a great and wonderful day", true},
		{"english negative", "This is terrible and awful", false},
		{"turkish positive", "harika bir gün", true},
		{"turkish negative", "berbat bir hizmet", false},
		{"turkish uppercase dotted i", "İĞRENÇ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := v.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.positive, c.IsPositive())
			assert.Greater(t, c.Confidence, 0.0)
			assert.LessOrEqual(t, c.Confidence, 1.0)
		})
	}
}

func TestVaderClassifier_Deterministic(t *testing.T) {
	v := NewVaderClassifier(nil)

	first, err := v.Classify(context.Background(), "Kargo çok yavaş ama ürün güzel")
	require.NoError(t, err)
	second, err := v.Classify(context.Background(), "Kargo çok yavaş ama ürün güzel")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVaderClassifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVaderClassifier(nil).Classify(ctx, "harika")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVaderFactory(t *testing.T) {
	c, err := NewVaderFactory(nil)(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &VaderClassifier{}, c)
}

func TestVaderClassifier_RecordsDuration(t *testing.T) {
	m := metrics.NewClassifierMetrics(prometheus.NewRegistry())
	v := NewVaderClassifier(m)

	_, err := v.Classify(context.Background(), "harika")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Classify(ctx, "harika")
	require.Error(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration), "one series per outcome")
}
