package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics tracks data loading and column classification.
//
// Metrics:
//   - piiaudit_scan_source_load_duration_seconds: data source load time
//   - piiaudit_scan_tables_total: tables loaded
//   - piiaudit_scan_columns_total: columns inspected
//   - piiaudit_scan_tagged_columns_total: tagged columns by tag
//   - piiaudit_scan_duration_seconds: classification wall time
type ScanMetrics struct {
	sourceLoadDuration *prometheus.HistogramVec
	tablesTotal        *prometheus.CounterVec
	columnsTotal       prometheus.Counter
	taggedTotal        *prometheus.CounterVec
	scanDuration       prometheus.Histogram
}

// NewScanMetrics creates and registers scan metrics.
func NewScanMetrics(namespace string, registry *prometheus.Registry) *ScanMetrics {
	sm := &ScanMetrics{
		sourceLoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "source_load_duration_seconds",
				Help:      "Time spent loading tables from a data source",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"source"},
		),
		tablesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "tables_total",
				Help:      "Total number of tables loaded for scanning",
			},
			[]string{"source"},
		),
		columnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "columns_total",
				Help:      "Total number of columns inspected",
			},
		),
		taggedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "tagged_columns_total",
				Help:      "Total number of columns tagged, by PII tag",
			},
			[]string{"tag"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scan",
				Name:      "duration_seconds",
				Help:      "Duration of column classification in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}

	registry.MustRegister(
		sm.sourceLoadDuration,
		sm.tablesTotal,
		sm.columnsTotal,
		sm.taggedTotal,
		sm.scanDuration,
	)

	return sm
}

// RecordSourceLoad records a data source load.
func (sm *ScanMetrics) RecordSourceLoad(source string, tables int, duration time.Duration) {
	sm.sourceLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	sm.tablesTotal.WithLabelValues(source).Add(float64(tables))
}

// RecordScan records one classification pass.
func (sm *ScanMetrics) RecordScan(columns int, tagCounts map[string]int, duration time.Duration) {
	sm.columnsTotal.Add(float64(columns))
	for tag, n := range tagCounts {
		sm.taggedTotal.WithLabelValues(tag).Add(float64(n))
	}
	sm.scanDuration.Observe(duration.Seconds())
}
