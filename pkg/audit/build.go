package audit

import (
	"log/slog"

	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/pii"
	"mercator-hq/piiaudit/pkg/policy"
	"mercator-hq/piiaudit/pkg/telemetry/metrics"
)

// NewScanner builds a scanner over the default catalog plus the configured
// custom tags.
func NewScanner(cfg config.ScanConfig, logger *slog.Logger) (*pii.Scanner, error) {
	catalog, err := BuildCatalog(cfg.CustomTags)
	if err != nil {
		return nil, err
	}
	return pii.NewScanner(
		pii.NewClassifier(catalog),
		pii.WithWorkers(cfg.Workers),
		pii.WithScanLogger(logger),
	), nil
}

// EvaluatorOptions returns the evaluator options implied by cfg. A nil
// collector disables per-rule metrics.
func EvaluatorOptions(cfg config.ScanConfig, collector *metrics.Collector, logger *slog.Logger) []policy.Option {
	opts := []policy.Option{
		policy.WithConcurrency(cfg.Workers),
		policy.WithLogger(logger),
	}
	if collector != nil {
		opts = append(opts, policy.WithRecorder(collector))
	}
	return opts
}
