package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnalysisMetrics covers the prediction pipeline: final labels, which
// heuristic rules fired, and where failures happened.
type AnalysisMetrics struct {
	Predictions *prometheus.CounterVec
	RuleFirings *prometheus.CounterVec
	FusedScore  prometheus.Histogram
	Clamped     prometheus.Counter
	Failures    *prometheus.CounterVec
	Duration    prometheus.Histogram
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "predictions_total",
			Help:      "Total number of predictions, by final label.",
		}, []string{"label"}),
		RuleFirings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "rule_firings_total",
			Help:      "Total number of heuristic rule firings, by rule.",
		}, []string{"rule"}),
		FusedScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "fused_score",
			Help:      "Distribution of fused scores after clamping.",
			Buckets:   prometheus.LinearBuckets(-1, 0.25, 9),
		}),
		Clamped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "clamped_total",
			Help:      "Total number of predictions whose fused score hit -1 or 1.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "failures_total",
			Help:      "Total number of failed predictions, by stage.",
		}, []string{"stage"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Duration of a full prediction in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	reg.MustRegister(m.Predictions, m.RuleFirings, m.FusedScore, m.Clamped, m.Failures, m.Duration)
	return m
}
