package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for streaming connections.
type WebSocketMetrics struct {
	ActiveConnections prometheus.Gauge
	MessagesHandled   *prometheus.CounterVec
}

// NewWebSocketMetrics creates and registers WebSocket metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket connections.",
		}),
		MessagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_handled_total",
			Help:      "Total number of WebSocket messages analysed, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.ActiveConnections, m.MessagesHandled)
	return m
}
