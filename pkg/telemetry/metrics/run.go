package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run statuses.
const (
	RunStatusClean     = "clean"
	RunStatusViolation = "violations"
	RunStatusError     = "error"
)

// RunMetrics tracks complete audit runs.
//
// Metrics:
//   - piiaudit_audit_runs_total: runs by status
//   - piiaudit_audit_run_duration_seconds: run wall time
//   - piiaudit_audit_last_run_timestamp_seconds: completion time of the last run
//   - piiaudit_audit_last_run_violations: violations found by the last run
//   - piiaudit_audit_skipped_runs_total: scheduled runs skipped due to overlap
type RunMetrics struct {
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	lastRunTimestamp  prometheus.Gauge
	lastRunViolations prometheus.Gauge
	skippedTotal      prometheus.Counter
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(namespace string, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "runs_total",
				Help:      "Total number of audit runs",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "run_duration_seconds",
				Help:      "Duration of audit runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
		),
		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last audit run finished",
			},
		),
		lastRunViolations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "last_run_violations",
				Help:      "Number of violations found by the last successful run",
			},
		),
		skippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "skipped_runs_total",
				Help:      "Total number of scheduled runs skipped because a run was in progress",
			},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.lastRunTimestamp,
		rm.lastRunViolations,
		rm.skippedTotal,
	)

	return rm
}

// RecordRun records a finished run.
func (rm *RunMetrics) RecordRun(status string, violations int, duration time.Duration, finishedAt time.Time) {
	rm.runsTotal.WithLabelValues(status).Inc()
	rm.runDuration.Observe(duration.Seconds())
	rm.lastRunTimestamp.Set(float64(finishedAt.Unix()))
	if status != RunStatusError {
		rm.lastRunViolations.Set(float64(violations))
	}
}

// RecordSkipped records a skipped run.
func (rm *RunMetrics) RecordSkipped() {
	rm.skippedTotal.Inc()
}
