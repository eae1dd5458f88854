package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/audit"
	"mercator-hq/piiaudit/pkg/cli"
	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/dataset"
	"mercator-hq/piiaudit/pkg/report"
	"mercator-hq/piiaudit/pkg/telemetry/logging"
	"mercator-hq/piiaudit/pkg/telemetry/metrics"
	"mercator-hq/piiaudit/pkg/telemetry/tracing"
)

const tracerShutdownTimeout = 5 * time.Second

// env carries the configuration and telemetry shared by every command.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// newEnv loads the configuration and builds logging, metrics and tracing.
// Logs go to the command's error stream so stdout stays machine readable.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(cfg.Telemetry.Metrics, nil),
		tracer:  tracer,
	}, nil
}

// close flushes pending spans.
func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()
	if err := e.tracer.Shutdown(ctx); err != nil {
		e.logger.Warn("failed to flush traces", "error", err)
	}
}

// commandContext tags ctx with the command name for log correlation.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithCommand(ctx, cmd.Name())
}

// newRunner wires an audit runner. The data source is only opened when
// withSource is set and the policy source only when withPolicies is set.
func (e *env) newRunner(withSource, withPolicies bool) (*audit.Runner, error) {
	exporter, err := report.NewExporter(e.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	rc := audit.RunnerConfig{
		Exporter:  exporter,
		OutputDir: e.cfg.Output.Dir,
		Metrics:   e.metrics,
		Tracer:    e.tracer,
		Logger:    e.logger,
	}

	if withSource {
		source, err := dataset.Open(e.cfg.Scan.Source)
		if err != nil {
			return nil, err
		}
		scanner, err := audit.NewScanner(e.cfg.Scan, e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to build tag catalog: %w", err)
		}
		rc.Source = source
		rc.Scanner = scanner
	}

	if withPolicies {
		policies, err := audit.OpenPolicies(e.cfg.Policy, e.metrics, e.logger,
			audit.EvaluatorOptions(e.cfg.Scan, e.metrics, e.logger)...)
		if err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
		rc.Policies = policies
	}

	return audit.NewRunner(rc)
}

// summaryTable renders the headline numbers of a result.
func summaryTable(res *audit.Result) *cli.Table {
	t := &cli.Table{Headers: []string{"item", "value"}}
	t.AddRow("run_id", res.RunID)
	if res.ScanPath != "" {
		t.AddRow("tables", strconv.Itoa(res.Tables))
		t.AddRow("columns", strconv.Itoa(res.Columns))
		t.AddRow("scan_report", res.ScanPath)
	}
	t.AddRow("tagged_columns", strconv.Itoa(res.Registry.Len()))
	t.AddRow("violations", strconv.Itoa(len(res.Violations)))
	t.AddRow("violations_report", res.ViolationsPath)
	if res.PolicyCommit != "" {
		t.AddRow("policy_commit", res.PolicyCommit)
	}
	t.AddRow("duration", res.Duration.Round(time.Millisecond).String())
	return t
}

// violationsTable lists violations in report order.
func violationsTable(res *audit.Result) *cli.Table {
	t := &cli.Table{Headers: []string{"policy_id", "table", "column", "pii_tags", "reason"}}
	for _, v := range res.Violations {
		row := v.Row()
		t.AddRow(row.PolicyID, row.Table, row.Column, row.PIITags, row.Reason)
	}
	return t
}

// printResult writes the run summary and, if any, the violations.
func printResult(w io.Writer, format string, res *audit.Result) error {
	outFormat, err := cli.ParseOutputFormat(format)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(outFormat)

	if outFormat == cli.FormatJSON {
		return formatter.FormatTo(w, struct {
			Summary    any `json:"summary"`
			Violations any `json:"violations"`
		}{
			Summary:    summaryRecord(res),
			Violations: violationRecords(res),
		})
	}

	if err := formatter.FormatTo(w, summaryTable(res)); err != nil {
		return err
	}
	if res.HasViolations() {
		fmt.Fprintln(w)
		return formatter.FormatTo(w, violationsTable(res))
	}
	return nil
}

func summaryRecord(res *audit.Result) map[string]string {
	t := summaryTable(res)
	out := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		out[row[0]] = row[1]
	}
	return out
}

func violationRecords(res *audit.Result) []map[string]string {
	t := violationsTable(res)
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// checkViolations converts violations into a command failure when asked to.
func checkViolations(res *audit.Result, fail bool) error {
	if fail && res.HasViolations() {
		return &cli.ViolationsError{Count: len(res.Violations)}
	}
	return nil
}
