package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/piiaudit/pkg/dataset"
	"mercator-hq/piiaudit/pkg/pii"
	"mercator-hq/piiaudit/pkg/policy"
	"mercator-hq/piiaudit/pkg/report"
	"mercator-hq/piiaudit/pkg/telemetry/logging"
	"mercator-hq/piiaudit/pkg/telemetry/metrics"
	"mercator-hq/piiaudit/pkg/telemetry/tracing"
)

// ErrNoPolicies is returned by evaluation when the runner has no policy
// source.
var ErrNoPolicies = errors.New("no policy source configured")

// ScanResult is the outcome of loading and classifying a data source.
type ScanResult struct {
	Tables   int
	Columns  int
	Registry pii.Registry
}

// Result is the outcome of a full audit run.
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Tables   int
	Columns  int
	Registry pii.Registry

	Violations   []policy.Violation
	PolicyCommit string

	// ScanPath and ViolationsPath are the written report files. ScanPath is
	// empty when the run evaluated a saved registry.
	ScanPath       string
	ViolationsPath string
}

// HasViolations reports whether any policy was violated.
func (r *Result) HasViolations() bool {
	return len(r.Violations) > 0
}

// RunnerConfig holds the collaborators of a Runner.
type RunnerConfig struct {
	// Source supplies tables. Required for Scan and Run.
	Source dataset.Source

	// Scanner classifies columns. Required for Scan and Run.
	Scanner *pii.Scanner

	// Policies supplies rules. Required for Run and Evaluate.
	Policies PolicySource

	// Exporter writes report files. Required.
	Exporter report.Exporter

	// OutputDir receives the report files. Required.
	OutputDir string

	// Metrics, Tracer and Logger are optional.
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Logger  *slog.Logger
}

// Runner executes the audit pipeline: load tables, scan them, evaluate
// policies and write reports.
type Runner struct {
	source    dataset.Source
	scanner   *pii.Scanner
	policies  PolicySource
	exporter  report.Exporter
	outputDir string
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// NewRunner validates cfg and creates a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if (cfg.Source == nil) != (cfg.Scanner == nil) {
		return nil, fmt.Errorf("source and scanner must be configured together")
	}

	r := &Runner{
		source:    cfg.Source,
		scanner:   cfg.Scanner,
		policies:  cfg.Policies,
		exporter:  cfg.Exporter,
		outputDir: cfg.OutputDir,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger,
	}
	if r.tracer == nil {
		r.tracer = tracing.Noop()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "audit.runner")
	return r, nil
}

// Policies returns the runner's policy source.
func (r *Runner) Policies() PolicySource {
	return r.policies
}

// Scan loads the data source and classifies every column.
func (r *Runner) Scan(ctx context.Context) (res *ScanResult, err error) {
	if r.source == nil {
		return nil, fmt.Errorf("no data source configured")
	}

	loadCtx, loadSpan := r.tracer.Start(ctx, "dataset.load")
	loadStart := time.Now()
	tables, err := r.source.Load(loadCtx)
	if err == nil {
		tracing.SetSourceAttributes(loadSpan, r.source.Name(), len(tables), pii.ColumnCount(tables))
	}
	tracing.End(loadSpan, err)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordSourceLoad(r.source.Name(), len(tables), time.Since(loadStart))
	}

	ctx, span := r.tracer.Start(ctx, "pii.scan")
	defer func() { tracing.End(span, err) }()

	scanStart := time.Now()
	registry, err := r.scanner.Scan(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	columns := pii.ColumnCount(tables)
	tracing.SetScanAttributes(span, columns, registry.Len())

	if r.metrics != nil {
		counts := make(map[string]int)
		for tag, n := range registry.TagCounts() {
			counts[string(tag)] = n
		}
		r.metrics.RecordScan(columns, counts, time.Since(scanStart))
	}

	r.logger.InfoContext(ctx, "scan completed",
		"source", r.source.Name(),
		"tables", len(tables),
		"columns", columns,
		"tagged_columns", registry.Len(),
	)

	return &ScanResult{
		Tables:   len(tables),
		Columns:  columns,
		Registry: registry,
	}, nil
}

// WriteRegistry writes the registry report and returns its path.
func (r *Runner) WriteRegistry(ctx context.Context, registry pii.Registry) (path string, err error) {
	ctx, span := r.tracer.Start(ctx, "report.registry")
	defer func() { tracing.End(span, err) }()

	return report.WriteRegistryFile(ctx, r.outputDir, r.exporter, registry.ToRows())
}

// Run executes the full pipeline under a new run ID.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := r.begin()
	ctx = logging.WithRunID(ctx, res.RunID)

	ctx, span := r.tracer.Start(ctx, "audit.run")
	tracing.SetRunAttributes(span, res.RunID)

	err := r.run(ctx, res)
	r.finish(ctx, res, err)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) run(ctx context.Context, res *Result) error {
	if r.policies == nil {
		return ErrNoPolicies
	}

	scan, err := r.Scan(ctx)
	if err != nil {
		return err
	}
	res.Tables = scan.Tables
	res.Columns = scan.Columns
	res.Registry = scan.Registry

	if res.ScanPath, err = r.WriteRegistry(ctx, scan.Registry); err != nil {
		return err
	}
	return r.evaluate(ctx, res)
}

// Evaluate applies the current policies to a previously produced registry
// and writes the violations report.
func (r *Runner) Evaluate(ctx context.Context, registry pii.Registry) (*Result, error) {
	res := r.begin()
	res.Registry = registry
	ctx = logging.WithRunID(ctx, res.RunID)

	ctx, span := r.tracer.Start(ctx, "audit.evaluate")
	tracing.SetRunAttributes(span, res.RunID)

	var err error
	if r.policies == nil {
		err = ErrNoPolicies
	} else {
		err = r.evaluate(ctx, res)
	}
	r.finish(ctx, res, err)
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) evaluate(ctx context.Context, res *Result) (err error) {
	ctx, span := r.tracer.Start(ctx, "policy.evaluate")
	defer func() { tracing.End(span, err) }()

	set, err := r.policies.Policies(ctx)
	if err != nil {
		return fmt.Errorf("load policies from %s: %w", r.policies.Describe(), err)
	}
	res.PolicyCommit = set.CommitSHA()

	violations, err := set.Evaluator.Evaluate(ctx, res.Registry)
	if err != nil {
		return err
	}
	res.Violations = violations
	tracing.SetEvaluationAttributes(span, len(set.Evaluator.Rules()), len(violations), res.PolicyCommit)

	res.ViolationsPath, err = report.WriteViolationsFile(ctx, r.outputDir, r.exporter, policy.ViolationRows(violations))
	return err
}

func (r *Runner) begin() *Result {
	return &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// finish logs the run summary and records run metrics.
func (r *Runner) finish(ctx context.Context, res *Result, err error) {
	res.Duration = time.Since(res.StartedAt)

	status := metrics.RunStatusClean
	switch {
	case err != nil:
		status = metrics.RunStatusError
		r.logger.ErrorContext(ctx, "audit run failed",
			"duration", res.Duration,
			"error", err,
		)
	case res.HasViolations():
		status = metrics.RunStatusViolation
		r.logger.WarnContext(ctx, "policy violations found",
			"violations", len(res.Violations),
			"by_policy", policy.CountByPolicy(res.Violations),
			"tagged_columns", res.Registry.Len(),
			"policy_commit", res.PolicyCommit,
			"report", res.ViolationsPath,
			"duration", res.Duration,
		)
	default:
		r.logger.InfoContext(ctx, "audit run completed with no violations",
			"tagged_columns", res.Registry.Len(),
			"policy_commit", res.PolicyCommit,
			"duration", res.Duration,
		)
	}

	if r.metrics != nil {
		r.metrics.RecordRun(status, len(res.Violations), res.Duration, res.StartedAt.Add(res.Duration))
	}
}
