package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by the data core.
const Namespace = "uptop"

// Metrics contains the core data-service metrics (not view-specific)
type Metrics struct {
	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	RetriesTotal  *prometheus.CounterVec
	RowsDropped   *prometheus.CounterVec
	DedupJoined   *prometheus.CounterVec

	// Store metrics
	StoreWrites         *prometheus.CounterVec
	NotifyErrors        *prometheus.CounterVec
	SubscriptionsActive prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Total fetches by resource and outcome (fresh, cached, stale, error)",
			},
			[]string{"resource", "outcome"},
		),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Duration of remote fetches including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource"},
		),

		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "fetch",
				Name:      "retries_total",
				Help:      "Total retry attempts by resource",
			},
			[]string{"resource"},
		),

		RowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "fetch",
				Name:      "rows_dropped_total",
				Help:      "Rows excluded from fetch results by validation",
			},
			[]string{"resource"},
		),

		DedupJoined: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "fetch",
				Name:      "dedup_joined_total",
				Help:      "Fetch calls that joined an in-flight request instead of issuing their own",
			},
			[]string{"resource"},
		),

		StoreWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "writes_total",
				Help:      "Total state store writes by top-level path segment",
			},
			[]string{"root"},
		),

		NotifyErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "notify_errors_total",
				Help:      "Subscriber callbacks that panicked during notification",
			},
			[]string{"path"},
		),

		SubscriptionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "subscriptions_active",
				Help:      "Currently registered store subscriptions",
			},
		),
	}
}

// collectors returns every core collector for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FetchesTotal,
		m.FetchDuration,
		m.RetriesTotal,
		m.RowsDropped,
		m.DedupJoined,
		m.StoreWrites,
		m.NotifyErrors,
		m.SubscriptionsActive,
	}
}
