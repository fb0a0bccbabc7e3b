package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// bridgeMetrics are registered per server so tests can use fresh registries.
type bridgeMetrics struct {
	// Counts HTTP requests, labeled by route pattern and status code.
	requests *prometheus.CounterVec
	// Counts renderer events received over websockets, labeled by type.
	events *prometheus.CounterVec
	// Counts state transitions pushed to renderers, labeled by phase.
	transitions *prometheus.CounterVec
	// Currently connected renderers.
	clients prometheus.Gauge
}

func newBridgeMetrics(reg prometheus.Registerer) *bridgeMetrics {
	factory := promauto.With(reg)
	return &bridgeMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simnet_bridge_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "status"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simnet_bridge_events_total",
				Help: "Renderer events received over websocket",
			},
			[]string{"type"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simnet_bridge_transitions_total",
				Help: "Explorer state transitions pushed to renderers",
			},
			[]string{"phase"},
		),
		clients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "simnet_bridge_clients",
				Help: "Connected renderer websockets",
			},
		),
	}
}
