package config

import "time"

// Config is the root configuration structure for the PII audit tool.
// It contains every section consumed by the scan, evaluate, audit and
// schedule commands.
type Config struct {
	// Scan selects the dataset source and tunes the classifier.
	Scan ScanConfig `yaml:"scan"`

	// Policy locates the policy document and controls reloading.
	Policy PolicyConfig `yaml:"policy"`

	// Output controls where and how result files are written.
	Output OutputConfig `yaml:"output"`

	// Schedule contains the cron settings used by the schedule command.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScanConfig contains dataset and classifier configuration.
type ScanConfig struct {
	// Source selects where tables are loaded from.
	Source SourceConfig `yaml:"source"`

	// Workers bounds the number of tables classified concurrently.
	// Zero selects the number of CPUs.
	// Default: 0
	Workers int `yaml:"workers"`

	// CustomTags are appended to the built-in tag catalog, after the
	// built-in entries.
	CustomTags []CustomTagConfig `yaml:"custom_tags"`
}

// SourceConfig describes a dataset source.
type SourceConfig struct {
	// Type is the source kind.
	// Options: "csv", "json", "sql"
	// Default: "csv"
	Type string `yaml:"type"`

	// Dir is the directory scanned for *.csv files when Type is "csv".
	// Default: "data"
	Dir string `yaml:"dir"`

	// File is the dataset document when Type is "json".
	File string `yaml:"file"`

	// Driver is the database/sql driver name when Type is "sql".
	// Options: "sqlite3", "sqlite", "pgx", "snowflake"
	Driver string `yaml:"driver"`

	// DSN is the data source name passed to the driver.
	DSN string `yaml:"dsn"`

	// Schema restricts table discovery to one schema. Ignored by SQLite.
	Schema string `yaml:"schema"`

	// Tables restricts loading to the listed tables. Empty means all.
	Tables []string `yaml:"tables"`

	// RowLimit caps the rows sampled per table for SQL sources.
	// Default: 1000
	RowLimit int `yaml:"row_limit"`
}

// CustomTagConfig declares an additional PII tag.
type CustomTagConfig struct {
	// Tag is the tag name written to output rows.
	Tag string `yaml:"tag"`

	// NamePattern is searched in the lower-cased column name.
	NamePattern string `yaml:"name_pattern"`

	// ValuePattern must match whole sampled values.
	ValuePattern string `yaml:"value_pattern"`
}

// PolicyConfig contains policy source configuration.
type PolicyConfig struct {
	// FilePath is the path to the policy document (YAML or JSON).
	// When Git is enabled it is resolved inside the clone instead.
	// Default: "policies.yaml"
	FilePath string `yaml:"file_path"`

	// Watch reloads the policy document when it changes on disk.
	// Only used by long-running commands.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a change triggers a reload.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Git configures an optional Git repository holding the policy document.
	Git GitConfig `yaml:"git"`
}

// GitConfig contains Git policy repository configuration.
type GitConfig struct {
	// Enabled turns on the Git policy source.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository is the clone URL or a local path.
	Repository string `yaml:"repository"`

	// Branch is the branch to check out.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path is the policy document path relative to the repository root.
	// Default: "policies.yaml"
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: "<tmp>/piiaudit-policies"
	LocalPath string `yaml:"local_path"`

	// Depth limits clone history. Zero clones the full history.
	Depth int `yaml:"depth"`

	// Timeout bounds clone and pull operations.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures repository authentication.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains Git authentication settings.
type GitAuthConfig struct {
	// Type is the authentication method.
	// Options: "none", "token", "ssh"
	// Default: "none"
	Type string `yaml:"type"`

	// Token is the access token for "token" auth.
	Token string `yaml:"token"`

	// SSHKeyPath is the private key file for "ssh" auth.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase unlocks an encrypted SSH key.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// OutputConfig contains result file configuration.
type OutputConfig struct {
	// Dir is the directory receiving pii_scan and violations files.
	// Default: "output"
	Dir string `yaml:"dir"`

	// Format is the file format.
	// Options: "csv", "json"
	// Default: "csv"
	Format string `yaml:"format"`
}

// ScheduleConfig contains recurring audit configuration.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression or a descriptor such as
	// "@hourly".
	// Default: "0 2 * * *"
	Cron string `yaml:"cron"`

	// RunOnStart runs one audit immediately before waiting for the first tick.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII scrubs email, phone, SSN and IP shaped values from log
	// attributes. Nil means the default.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactEnabled reports whether PII redaction is on.
func (c LoggingConfig) RedactEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint while the schedule command runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path serving metrics.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "piiaudit"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled exports spans for audit runs.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each span export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name attached to spans.
	// Default: "piiaudit"
	ServiceName string `yaml:"service_name"`
}
