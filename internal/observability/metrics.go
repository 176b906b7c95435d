package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	auditRecordedTotal    prometheus.Counter
	auditDroppedTotal     *prometheus.CounterVec
	activityExportsTotal  prometheus.Counter
	recomputeRunsTotal    *prometheus.CounterVec
	recomputeThrottled    prometheus.Counter
	feedClientsActive     prometheus.Gauge
	importRowsProcessed   prometheus.Counter
	importRowsFailedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppspot_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oppspot_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppspot_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppspot_audit_entries_recorded_total",
			Help: "Activity log entries successfully appended.",
		})

		auditDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppspot_audit_entries_dropped_total",
			Help: "Activity log entries lost instead of appended.",
		}, []string{"reason"})

		activityExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppspot_activity_exports_total",
			Help: "CSV exports of data room activity logs.",
		})

		recomputeRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppspot_recompute_runs_total",
			Help: "Recompute runs by terminal status.",
		}, []string{"status"})

		recomputeThrottled = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppspot_recompute_throttled_total",
			Help: "Recompute triggers rejected by the cooldown window.",
		})

		feedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oppspot_feed_clients_active",
			Help: "Currently connected activity feed stream clients.",
		})

		importRowsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppspot_import_rows_processed_total",
			Help: "Company import rows processed.",
		})

		importRowsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppspot_import_rows_failed_total",
			Help: "Company import rows rejected.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			auditRecordedTotal, auditDroppedTotal, activityExportsTotal,
			recomputeRunsTotal, recomputeThrottled, feedClientsActive,
			importRowsProcessed, importRowsFailedTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AuditEntriesRecorded exposes the audit append counter.
func AuditEntriesRecorded() prometheus.Counter {
	RegisterMetrics()
	return auditRecordedTotal
}

// AuditEntriesDropped exposes the audit loss counter.
func AuditEntriesDropped() *prometheus.CounterVec {
	RegisterMetrics()
	return auditDroppedTotal
}

// ActivityExportsTotal exposes the CSV export counter.
func ActivityExportsTotal() prometheus.Counter {
	RegisterMetrics()
	return activityExportsTotal
}

// RecomputeRuns exposes the recompute run counter.
func RecomputeRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return recomputeRunsTotal
}

// RecomputeThrottled exposes the cooldown rejection counter.
func RecomputeThrottled() prometheus.Counter {
	RegisterMetrics()
	return recomputeThrottled
}

// FeedClientsActive exposes the live stream client gauge.
func FeedClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return feedClientsActive
}

// ImportRowsProcessed exposes the import progress counter.
func ImportRowsProcessed() prometheus.Counter {
	RegisterMetrics()
	return importRowsProcessed
}

// ImportRowsFailed exposes the import failure counter.
func ImportRowsFailed() prometheus.Counter {
	RegisterMetrics()
	return importRowsFailedTotal
}
