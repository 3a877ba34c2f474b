package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClassifierMetrics holds metrics for the external classifier capability and
// the circuit breakers in front of remote dependencies.
type ClassifierMetrics struct {
	RequestDuration    *prometheus.HistogramVec
	BreakerState       *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec
}

func NewClassifierMetrics(reg prometheus.Registerer) *ClassifierMetrics {
	m := &ClassifierMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "request_duration_seconds",
			Help:      "Duration of classifier calls in seconds, by backend and outcome.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"backend", "outcome"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		BreakerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions, by component and new state.",
		}, []string{"component", "state"}),
	}

	reg.MustRegister(m.RequestDuration, m.BreakerState, m.BreakerTransitions)
	return m
}
