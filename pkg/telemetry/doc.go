// Package telemetry groups the observability packages used by piiaudit.
//
//   - logging: slog logger with run ID context fields and PII redaction
//   - metrics: Prometheus collector for scans, policy evaluation and runs
//   - tracing: OpenTelemetry spans around each audit run
//   - health: liveness and readiness probes for the schedule command
//
// Metrics, tracing and health endpoints are optional and configured under
// the telemetry section of the configuration file. Logging is always on.
package telemetry
