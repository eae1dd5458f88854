package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Scan defaults
	DefaultSourceType = "csv"
	DefaultSourceDir  = "data"
	DefaultRowLimit   = 1000

	// Policy defaults
	DefaultPolicyFilePath      = "policies.yaml"
	DefaultPolicyWatchDebounce = 100 * time.Millisecond
	DefaultPolicyGitBranch     = "main"
	DefaultPolicyGitPath       = "policies.yaml"
	DefaultPolicyGitTimeout    = 30 * time.Second
	DefaultPolicyGitAuthType   = "none"

	// Output defaults
	DefaultOutputDir    = "output"
	DefaultOutputFormat = "csv"

	// Schedule defaults
	DefaultScheduleCron = "0 2 * * *"

	// Telemetry defaults
	DefaultLoggingLevel          = "info"
	DefaultLoggingFormat         = "text"
	DefaultMetricsListenAddress  = "127.0.0.1:9090"
	DefaultMetricsPath           = "/metrics"
	DefaultMetricsNamespace      = "piiaudit"
	DefaultTracingSampler        = "always"
	DefaultTracingSampleRatio    = 1.0
	DefaultTracingEndpoint       = "localhost:4317"
	DefaultTracingTimeout        = 10 * time.Second
	DefaultTracingServiceName    = "piiaudit"
	defaultPolicyGitLocalDirName = "piiaudit-policies"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Scan defaults
	if cfg.Scan.Source.Type == "" {
		cfg.Scan.Source.Type = DefaultSourceType
	}
	if cfg.Scan.Source.Type == "csv" && cfg.Scan.Source.Dir == "" {
		cfg.Scan.Source.Dir = DefaultSourceDir
	}
	if cfg.Scan.Source.RowLimit == 0 {
		cfg.Scan.Source.RowLimit = DefaultRowLimit
	}

	// Policy defaults
	if cfg.Policy.FilePath == "" {
		cfg.Policy.FilePath = DefaultPolicyFilePath
	}
	if cfg.Policy.WatchDebounce == 0 {
		cfg.Policy.WatchDebounce = DefaultPolicyWatchDebounce
	}
	applyGitDefaults(&cfg.Policy.Git)

	// Output defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	// Schedule defaults
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultScheduleCron
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	applyTracingDefaults(&cfg.Telemetry.Tracing)
}

// applyTracingDefaults fills the tracing defaults.
func applyTracingDefaults(cfg *TracingConfig) {
	if cfg.Sampler == "" {
		cfg.Sampler = DefaultTracingSampler
	}
	if cfg.SampleRatio == 0 {
		cfg.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTracingTimeout
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultTracingServiceName
	}
}

// applyGitDefaults fills the Git policy source defaults.
func applyGitDefaults(cfg *GitConfig) {
	if cfg.Branch == "" {
		cfg.Branch = DefaultPolicyGitBranch
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPolicyGitPath
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = filepath.Join(os.TempDir(), defaultPolicyGitLocalDirName)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultPolicyGitTimeout
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = DefaultPolicyGitAuthType
	}
}
