package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRunID        = "piiaudit.run_id"
	AttrSource       = "piiaudit.source"
	AttrTables       = "piiaudit.tables"
	AttrColumns      = "piiaudit.columns"
	AttrTagged       = "piiaudit.tagged_columns"
	AttrPolicies     = "piiaudit.policies"
	AttrViolations   = "piiaudit.violations"
	AttrPolicyCommit = "piiaudit.policy.commit"
	AttrOutputFormat = "piiaudit.output.format"
)

// SetRunAttributes records the audit run identity on span.
func SetRunAttributes(span trace.Span, runID string) {
	span.SetAttributes(attribute.String(AttrRunID, runID))
}

// SetSourceAttributes records what a data source produced.
func SetSourceAttributes(span trace.Span, source string, tables, columns int) {
	span.SetAttributes(
		attribute.String(AttrSource, source),
		attribute.Int(AttrTables, tables),
		attribute.Int(AttrColumns, columns),
	)
}

// SetScanAttributes records the result of a scan.
func SetScanAttributes(span trace.Span, columns, tagged int) {
	span.SetAttributes(
		attribute.Int(AttrColumns, columns),
		attribute.Int(AttrTagged, tagged),
	)
}

// SetEvaluationAttributes records the result of a policy evaluation.
// An empty commit is omitted.
func SetEvaluationAttributes(span trace.Span, policies, violations int, commit string) {
	span.SetAttributes(
		attribute.Int(AttrPolicies, policies),
		attribute.Int(AttrViolations, violations),
	)
	if commit != "" {
		span.SetAttributes(attribute.String(AttrPolicyCommit, commit))
	}
}
