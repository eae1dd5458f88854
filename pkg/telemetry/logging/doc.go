// Package logging builds the structured logger used across the tool.
//
// New returns a standard *slog.Logger whose handler adds the audit run ID and
// command name stored in the context, and scrubs PII (emails, SSNs, IPv4
// addresses, phone numbers) and secrets (tokens, passwords, DSNs) from
// attribute values when redaction is enabled.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//		return err
//	}
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "audit finished", "violations", n) // includes run_id
package logging
