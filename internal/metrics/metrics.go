// Package metrics exposes Prometheus collectors for the relay.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeOffline   = "offline"
	OutcomeFailed    = "failed"
)

// Metrics groups relay collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	deliveries        *prometheus.CounterVec
	historyPushes     *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
}

// New creates collectors and registers them on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gophchat_connections_active",
			Help: "Current number of open realtime connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophchat_connections_total",
			Help: "Total number of realtime connections accepted since start.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_message_deliveries_total",
			Help: "Live message pushes grouped by outcome.",
		}, []string{"outcome"}),
		historyPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_history_pushes_total",
			Help: "History pushes grouped by outcome.",
		}, []string{"outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_store_errors_total",
			Help: "Conversation store failures grouped by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.connectionsActive,
		m.connectionsTotal,
		m.deliveries,
		m.historyPushes,
		m.storeErrors,
	)
	return m
}

// TrackPresence exports the number of announced users as reported by size.
func TrackPresence(reg prometheus.Registerer, size func() int) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gophchat_present_users",
		Help: "Number of users currently bound to a live connection.",
	}, func() float64 { return float64(size()) }))
}

// ConnectionOpened records an accepted connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
	m.connectionsTotal.Inc()
}

// ConnectionClosed records a terminated connection.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

// Delivery records the outcome of a live message push.
func (m *Metrics) Delivery(outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

// HistoryPush records the outcome of a history push.
func (m *Metrics) HistoryPush(outcome string) {
	if m == nil {
		return
	}
	m.historyPushes.WithLabelValues(outcome).Inc()
}

// StoreError records a failed store operation.
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
