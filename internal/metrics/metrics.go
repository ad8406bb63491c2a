package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	Connections prometheus.Gauge
	OnlineUsers prometheus.Gauge

	BroadcastSends *prometheus.CounterVec

	QueueDepth    *prometheus.GaugeVec
	JobsProcessed *prometheus.CounterVec
	JobsRetried   *prometheus.CounterVec
	JobsDropped   *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Current number of live realtime connections.",
		}),
		OnlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_online_users",
			Help: "Current number of users with at least one live connection.",
		}),

		BroadcastSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_sends_total",
			Help: "Total per-connection envelope writes attempted by the broadcaster.",
		}, []string{"result"}),

		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of jobs waiting in each delivery queue.",
		}, []string{"queue"}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_processed_total",
			Help: "Total number of jobs completed successfully per queue.",
		}, []string{"queue"}),
		JobsRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_retried_total",
			Help: "Total number of job retries scheduled per queue.",
		}, []string{"queue"}),
		JobsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_jobs_dropped_total",
			Help: "Total number of jobs dropped after exhausting retries per queue.",
		}, []string{"queue"}),
	}

	reg.MustRegister(
		m.Connections,
		m.OnlineUsers,
		m.BroadcastSends,
		m.QueueDepth,
		m.JobsProcessed,
		m.JobsRetried,
		m.JobsDropped,
	)

	return m
}

// RegistryHooks returns the callbacks expected by registry.Hooks.
// Centralises the prometheus observation calls so the registry package
// stays import-free.
func (m *Metrics) RegistryHooks() (onConnections, onOnlineUsers func(int)) {
	onConnections = func(total int) { m.Connections.Set(float64(total)) }
	onOnlineUsers = func(total int) { m.OnlineUsers.Set(float64(total)) }
	return
}

// BroadcastHook returns the per-send callback expected by broadcast.New.
func (m *Metrics) BroadcastHook() func(ok bool) {
	okCounter := m.BroadcastSends.WithLabelValues("ok")
	errCounter := m.BroadcastSends.WithLabelValues("error")
	return func(ok bool) {
		if ok {
			okCounter.Inc()
			return
		}
		errCounter.Inc()
	}
}

// QueueHooks returns the callbacks expected by queue.Hooks, labelled
// with the queue's name.
func (m *Metrics) QueueHooks(queueName string) (onProcessed, onRetried, onDropped func(), onDepth func(int)) {
	processed := m.JobsProcessed.WithLabelValues(queueName)
	retried := m.JobsRetried.WithLabelValues(queueName)
	dropped := m.JobsDropped.WithLabelValues(queueName)
	depth := m.QueueDepth.WithLabelValues(queueName)

	onProcessed = func() { processed.Inc() }
	onRetried = func() { retried.Inc() }
	onDropped = func() { dropped.Inc() }
	onDepth = func(d int) { depth.Set(float64(d)) }
	return
}
