package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks currently open WebSocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codecollab",
		Name:      "ws_connections_active",
		Help:      "Currently open WebSocket connections.",
	})

	// EventsInbound counts inbound client events by type.
	EventsInbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecollab",
		Name:      "ws_events_inbound_total",
		Help:      "Inbound WebSocket events by type.",
	}, []string{"type"})

	// Executions counts execution proxy requests by outcome.
	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecollab",
		Name:      "executions_total",
		Help:      "Code execution requests by outcome.",
	}, []string{"outcome"})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
