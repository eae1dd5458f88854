package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "scan.source.type").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Supported option values.
var (
	validSourceTypes   = map[string]bool{"csv": true, "json": true, "sql": true}
	validDrivers       = map[string]bool{"sqlite3": true, "sqlite": true, "pgx": true, "snowflake": true}
	validOutputFormats = map[string]bool{"csv": true, "json": true}
	validGitAuthTypes  = map[string]bool{"none": true, "token": true, "ssh": true}
	validLogLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats    = map[string]bool{"json": true, "text": true}
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateScan(&cfg.Scan)...)
	errs = append(errs, validatePolicy(&cfg.Policy)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateScan validates the dataset source and classifier settings.
func validateScan(cfg *ScanConfig) []FieldError {
	var errs []FieldError
	src := &cfg.Source

	if !validSourceTypes[src.Type] {
		errs = append(errs, FieldError{
			Field:   "scan.source.type",
			Message: fmt.Sprintf("invalid source type %q: must be 'csv', 'json', or 'sql'", src.Type),
		})
	}

	switch src.Type {
	case "csv":
		if src.Dir == "" {
			errs = append(errs, FieldError{
				Field:   "scan.source.dir",
				Message: "directory is required when source type is 'csv'",
			})
		}
	case "json":
		if src.File == "" {
			errs = append(errs, FieldError{
				Field:   "scan.source.file",
				Message: "file is required when source type is 'json'",
			})
		}
	case "sql":
		if !validDrivers[src.Driver] {
			errs = append(errs, FieldError{
				Field:   "scan.source.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite3', 'sqlite', 'pgx', or 'snowflake'", src.Driver),
			})
		}
		if src.DSN == "" {
			errs = append(errs, FieldError{
				Field:   "scan.source.dsn",
				Message: "dsn is required when source type is 'sql'",
			})
		}
	}

	if src.RowLimit < 0 {
		errs = append(errs, FieldError{
			Field:   "scan.source.row_limit",
			Message: "row limit must be positive",
		})
	}

	if cfg.Workers < 0 {
		errs = append(errs, FieldError{
			Field:   "scan.workers",
			Message: "workers must be zero (auto) or positive",
		})
	}

	seen := make(map[string]bool)
	for i, tag := range cfg.CustomTags {
		field := fmt.Sprintf("scan.custom_tags[%d]", i)
		if strings.TrimSpace(tag.Tag) == "" {
			errs = append(errs, FieldError{Field: field + ".tag", Message: "tag is required"})
		} else if seen[tag.Tag] {
			errs = append(errs, FieldError{Field: field + ".tag", Message: fmt.Sprintf("duplicate tag %q", tag.Tag)})
		}
		seen[tag.Tag] = true

		if tag.NamePattern == "" && tag.ValuePattern == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "name_pattern or value_pattern is required",
			})
		}
		if tag.NamePattern != "" {
			if _, err := regexp.Compile(tag.NamePattern); err != nil {
				errs = append(errs, FieldError{Field: field + ".name_pattern", Message: err.Error()})
			}
		}
		if tag.ValuePattern != "" {
			if _, err := regexp.Compile(tag.ValuePattern); err != nil {
				errs = append(errs, FieldError{Field: field + ".value_pattern", Message: err.Error()})
			}
		}
	}

	return errs
}

// validatePolicy validates the policy source configuration.
func validatePolicy(cfg *PolicyConfig) []FieldError {
	var errs []FieldError

	if !cfg.Git.Enabled && cfg.FilePath == "" {
		errs = append(errs, FieldError{
			Field:   "policy.file_path",
			Message: "file path is required when git is disabled",
		})
	}

	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "policy.watch_debounce",
			Message: "debounce must not be negative",
		})
	}

	if !cfg.Git.Enabled {
		return errs
	}

	git := &cfg.Git
	if git.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "policy.git.repository",
			Message: "repository is required when git is enabled",
		})
	}
	if git.Branch == "" {
		errs = append(errs, FieldError{
			Field:   "policy.git.branch",
			Message: "branch is required when git is enabled",
		})
	}
	if git.Path == "" {
		errs = append(errs, FieldError{
			Field:   "policy.git.path",
			Message: "path is required when git is enabled",
		})
	}
	if git.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "policy.git.depth",
			Message: "depth must not be negative",
		})
	}

	switch {
	case !validGitAuthTypes[git.Auth.Type]:
		errs = append(errs, FieldError{
			Field:   "policy.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token', or 'ssh'", git.Auth.Type),
		})
	case git.Auth.Type == "token" && git.Auth.Token == "":
		errs = append(errs, FieldError{
			Field:   "policy.git.auth.token",
			Message: "token is required when auth type is 'token'",
		})
	case git.Auth.Type == "ssh" && git.Auth.SSHKeyPath == "":
		errs = append(errs, FieldError{
			Field:   "policy.git.auth.ssh_key_path",
			Message: "ssh key path is required when auth type is 'ssh'",
		})
	}

	return errs
}

// validateOutput validates result file settings.
func validateOutput(cfg *OutputConfig) []FieldError {
	var errs []FieldError

	if cfg.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "output.dir",
			Message: "output directory is required",
		})
	}
	if !validOutputFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid format %q: must be 'csv' or 'json'", cfg.Format),
		})
	}

	return errs
}

// validateSchedule checks that the cron expression parses.
func validateSchedule(cfg *ScheduleConfig) []FieldError {
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return []FieldError{{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Cron, err),
		}}
	}
	return nil
}

// validateTelemetry validates logging, metrics and tracing configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}
	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: err.Error(),
			})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: "listen address is required when metrics are enabled",
			})
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/'",
			})
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}
