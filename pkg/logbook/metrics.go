package logbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for logbook, grouped by component
// NOTE: No resource-path labels are used to avoid high cardinality issues
type Metrics struct {
	Requests RequestMetrics
	Store    StoreMetrics
	Mirror   MirrorMetrics
}

// RequestMetrics tracks the HTTP request flow through the logging middleware
type RequestMetrics struct {
	// Handled tracks completed requests by method and final status code
	Handled *prometheus.CounterVec // labels: method, status

	// Duration tracks time from request arrival to response completion
	Duration prometheus.Histogram
}

// StoreMetrics tracks record file operations
type StoreMetrics struct {
	// EntriesAppended tracks entries successfully appended to the record file
	EntriesAppended prometheus.Counter

	// AppendFailures tracks append calls that failed (disk full, permissions)
	AppendFailures prometheus.Counter

	// Reads tracks successful full-file retrievals
	Reads prometheus.Counter

	// ReadFailures tracks retrievals that failed (file absent, unreadable)
	ReadFailures prometheus.Counter
}

// MirrorMetrics tracks the optional ClickHouse mirror sink
type MirrorMetrics struct {
	// EntriesMirrored tracks entries flushed to the mirror sink
	EntriesMirrored prometheus.Counter

	// EntriesDropped tracks entries dropped because the mirror buffer was full
	EntriesDropped prometheus.Counter

	// FlushFailures tracks failed batch flushes to the mirror sink
	FlushFailures prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics with a custom registry
// This is useful for testing to avoid conflicts with the default registry
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: RequestMetrics{
			Handled: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "logbook_requests_total",
					Help: "Total number of completed HTTP requests",
				},
				[]string{"method", "status"},
			),
			Duration: factory.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "logbook_request_duration_seconds",
					Help:    "Time from request arrival to response completion",
					Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}, // 1ms to 10s
				},
			),
		},

		Store: StoreMetrics{
			EntriesAppended: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_store_entries_appended_total",
					Help: "Total number of entries appended to the record file",
				},
			),
			AppendFailures: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_store_append_failures_total",
					Help: "Total number of failed appends to the record file",
				},
			),
			Reads: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_store_reads_total",
					Help: "Total number of successful full-file retrievals",
				},
			),
			ReadFailures: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_store_read_failures_total",
					Help: "Total number of failed full-file retrievals",
				},
			),
		},

		Mirror: MirrorMetrics{
			EntriesMirrored: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_mirror_entries_total",
					Help: "Total number of entries flushed to the mirror sink",
				},
			),
			EntriesDropped: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_mirror_dropped_total",
					Help: "Total number of entries dropped because the mirror buffer was full",
				},
			),
			FlushFailures: factory.NewCounter(
				prometheus.CounterOpts{
					Name: "logbook_mirror_flush_failures_total",
					Help: "Total number of failed batch flushes to the mirror sink",
				},
			),
		},
	}
}
