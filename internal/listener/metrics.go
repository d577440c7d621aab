package listener

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the session layer. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	connections *prometheus.GaugeVec
	accepted    prometheus.Counter
	frames      *prometheus.CounterVec
	broadcasts  prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "webmud_connections",
			Help: "Number of open connections by binding state.",
		}, []string{"state"}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webmud_connections_accepted_total",
			Help: "Total connections accepted since server start.",
		}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webmud_frames_total",
			Help: "Inbound frames by outcome.",
		}, []string{"result"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webmud_broadcasts_total",
			Help: "Total broadcast messages sent.",
		}),
	}

	m.registry.MustRegister(
		m.connections,
		m.accepted,
		m.frames,
		m.broadcasts,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) connectionAccepted() {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.connections.WithLabelValues(StateUnbound.String()).Inc()
}

func (m *Metrics) connectionMoved(from, to State) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(from.String()).Dec()
	if to != StateClosed {
		m.connections.WithLabelValues(to.String()).Inc()
	}
}

func (m *Metrics) frame(result string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(result).Inc()
}

func (m *Metrics) broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}
