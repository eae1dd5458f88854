// Package metrics exposes Prometheus metrics for audit runs.
//
// A single Collector owns a registry and three metric groups:
//
//   - Scan metrics: source load time, tables and columns inspected, tagged
//     columns per PII tag, classification duration
//   - Policy metrics: evaluations and violations per policy, evaluation
//     duration, rule set reloads
//   - Run metrics: runs by status, run duration, last run time and
//     violation count, skipped scheduled runs
//
// The Collector implements the policy evaluator's Recorder interface, so it
// can be passed directly with policy.WithRecorder. Policy ID label values are
// capped by a CardinalityLimiter; IDs beyond the cap are folded into "other".
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux := http.NewServeMux()
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// When metrics are disabled in configuration every Record method is a no-op
// and the registry stays empty of samples.
package metrics
