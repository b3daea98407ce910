package transport

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the coordinator.
// Collectors work unregistered; call Register to expose them.
type Metrics struct {
	Requests         prometheus.Counter
	Unauthorized     prometheus.Counter
	LockAcquisitions prometheus.Counter
	Waiters          prometheus.Counter
	Replays          prometheus.Counter
	Refreshes        *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
}

// NewMetrics creates coordinator metrics under namespace (default "storefront")
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}
	const subsystem = "session"
	return &Metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Outbound calls sent by the coordinator, replays included",
		}),
		Unauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unauthorized_total",
			Help:      "Initial calls rejected with 401",
		}),
		LockAcquisitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_lock_acquisitions_total",
			Help:      "Refresh episodes started",
		}),
		Waiters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_waiters_total",
			Help:      "Callers that joined an in-flight refresh episode",
		}),
		Replays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replays_total",
			Help:      "Calls replayed after a refresh episode",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refreshes_total",
			Help:      "Refresh episode outcomes",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_duration_seconds",
			Help:      "Time the refresh lock was held",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Collectors returns all collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Unauthorized, m.LockAcquisitions, m.Waiters, m.Replays, m.Refreshes, m.RefreshDuration}
}

// Register registers all collectors with registerer
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	for _, collector := range m.Collectors() {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
