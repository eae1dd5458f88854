package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/piiaudit/pkg/config"
)

// otherLabel replaces label values once the cardinality limit is reached.
const otherLabel = "other"

// defaultMaxCardinality bounds the number of distinct policy IDs tracked.
const defaultMaxCardinality = 1000

// Collector owns the Prometheus registry and every metric the audit
// pipeline records. A disabled collector accepts calls and records nothing.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	scanMetrics   *ScanMetrics
	policyMetrics *PolicyMetrics
	runMetrics    *RunMetrics

	policyLimiter *CardinalityLimiter
}

// NewCollector creates a collector registered on registry. A nil registry
// selects a fresh one.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	evaluator, _ := policy.NewEvaluator(rules, policy.WithRecorder(collector))
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		enabled:       cfg.Enabled,
		registry:      registry,
		scanMetrics:   NewScanMetrics(namespace, registry),
		policyMetrics: NewPolicyMetrics(namespace, registry),
		runMetrics:    NewRunMetrics(namespace, registry),
		policyLimiter: NewCardinalityLimiter(defaultMaxCardinality),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// RecordSourceLoad records how long loading a data source took.
func (c *Collector) RecordSourceLoad(source string, tables int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.scanMetrics.RecordSourceLoad(source, tables, duration)
}

// RecordScan records the outcome of one scan.
//
// Parameters:
//   - columns: number of columns inspected
//   - tagCounts: tagged columns per tag
//   - duration: scan wall time
func (c *Collector) RecordScan(columns int, tagCounts map[string]int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.scanMetrics.RecordScan(columns, tagCounts, duration)
}

// RecordRuleEvaluation records one policy rule evaluation. It satisfies the
// policy evaluator's recorder interface.
func (c *Collector) RecordRuleEvaluation(ruleID string, violations int, duration time.Duration) {
	if !c.enabled {
		return
	}
	if !c.policyLimiter.Allow(ruleID) {
		ruleID = otherLabel
	}
	c.policyMetrics.RecordEvaluation(ruleID, violations, duration)
}

// RecordPolicyReload records the result of loading a policy set.
func (c *Collector) RecordPolicyReload(rules int, err error) {
	if !c.enabled {
		return
	}
	c.policyMetrics.RecordReload(rules, err)
}

// RecordRun records a finished audit run.
func (c *Collector) RecordRun(status string, violations int, duration time.Duration, finishedAt time.Time) {
	if !c.enabled {
		return
	}
	c.runMetrics.RecordRun(status, violations, duration, finishedAt)
}

// RecordSkippedRun records a scheduled run that was skipped because the
// previous one was still running.
func (c *Collector) RecordSkippedRun() {
	if !c.enabled {
		return
	}
	c.runMetrics.RecordSkipped()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique label values per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter with the given maximum.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Known values are
// always allowed; new ones only while under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
