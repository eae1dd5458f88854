// Package tracing wraps OpenTelemetry for audit runs.
//
// Each audit run produces one trace: a root "audit.run" span with children
// for loading the data source, scanning columns, loading policies,
// evaluating them and writing reports. Spans are exported over OTLP gRPC.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.25
//
// When tracing is disabled New returns a tracer whose spans are noops, so
// callers never need to branch on configuration.
package tracing
