package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Policy evaluation outcomes.
const (
	OutcomePassed   = "passed"
	OutcomeViolated = "violated"
)

// PolicyMetrics tracks policy loading and evaluation.
//
// Metrics:
//   - piiaudit_policy_evaluations_total: evaluations by policy and outcome
//   - piiaudit_policy_evaluation_duration_seconds: per-policy evaluation time
//   - piiaudit_policy_violations_total: violations by policy
//   - piiaudit_policy_rules_loaded: size of the active rule set
//   - piiaudit_policy_reloads_total: policy loads by result
type PolicyMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	violationsTotal    *prometheus.CounterVec
	rulesLoaded        prometheus.Gauge
	reloadsTotal       *prometheus.CounterVec
}

// NewPolicyMetrics creates and registers policy metrics.
func NewPolicyMetrics(namespace string, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"policy_id", "outcome"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a single policy evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
			[]string{"policy_id"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "violations_total",
				Help:      "Total number of violations raised",
			},
			[]string{"policy_id"},
		),
		rulesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "rules_loaded",
				Help:      "Number of policies in the active rule set",
			},
		),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "reloads_total",
				Help:      "Total number of policy loads",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		pm.evaluationsTotal,
		pm.evaluationDuration,
		pm.violationsTotal,
		pm.rulesLoaded,
		pm.reloadsTotal,
	)

	return pm
}

// RecordEvaluation records one policy evaluation.
func (pm *PolicyMetrics) RecordEvaluation(policyID string, violations int, duration time.Duration) {
	outcome := OutcomePassed
	if violations > 0 {
		outcome = OutcomeViolated
		pm.violationsTotal.WithLabelValues(policyID).Add(float64(violations))
	}
	pm.evaluationsTotal.WithLabelValues(policyID, outcome).Inc()
	pm.evaluationDuration.WithLabelValues(policyID).Observe(duration.Seconds())
}

// RecordReload records a policy load. The loaded gauge is only updated on
// success since a failed reload keeps the previous rules active.
func (pm *PolicyMetrics) RecordReload(rules int, err error) {
	if err != nil {
		pm.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	pm.reloadsTotal.WithLabelValues("success").Inc()
	pm.rulesLoaded.Set(float64(rules))
}
