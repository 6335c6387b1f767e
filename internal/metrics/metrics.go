// Package metrics defines Prometheus metrics for rulekeeper.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rulekeeper_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rulekeeper_audit_queue_depth",
			Help: "Current audit queue depth",
		},
	)

	AuditDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_audit_dropped_total",
			Help: "Audit entries not written, by reason",
		},
		[]string{"reason"},
	)

	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_sweep_runs_total",
			Help: "Retention sweeps by result",
		},
		[]string{"result"},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rulekeeper_sweep_duration_seconds",
			Help:    "Retention sweep duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	RowsPurged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_sweep_rows_purged_total",
			Help: "Rows deleted by retention sweeps, by dataset",
		},
		[]string{"dataset"},
	)

	SweepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rulekeeper_sweep_failures_total",
			Help: "Per-tenant dataset purge failures, by dataset",
		},
		[]string{"dataset"},
	)

	SweepLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rulekeeper_sweep_last_success_timestamp_seconds",
			Help: "Unix time of the last sweep that finished without failures",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		AuditQueueDepth, AuditDropped,
		SweepRuns, SweepDuration, RowsPurged, SweepFailures, SweepLastSuccess,
	)
}
