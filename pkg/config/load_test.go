package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "piiaudit.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
scan:
  source:
    type: sql
    driver: sqlite3
    dsn: "file:test.db"
    row_limit: 250
  workers: 4
  custom_tags:
    - tag: iban
      value_pattern: '[A-Z]{2}\d{2}[A-Z0-9]{11,30}'

policy:
  file_path: ./rules.yaml
  watch: true
  watch_debounce: 250ms

output:
  dir: ./out
  format: json

schedule:
  cron: "*/5 * * * *"
  run_on_start: true

telemetry:
  logging:
    level: debug
    format: json
    redact_pii: false
  metrics:
    enabled: true
    listen_address: ":9100"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Scan.Source.Driver != "sqlite3" || cfg.Scan.Source.RowLimit != 250 {
		t.Errorf("unexpected source: %+v", cfg.Scan.Source)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Scan.Workers)
	}
	if len(cfg.Scan.CustomTags) != 1 || cfg.Scan.CustomTags[0].Tag != "iban" {
		t.Errorf("unexpected custom tags: %+v", cfg.Scan.CustomTags)
	}
	if cfg.Policy.WatchDebounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", cfg.Policy.WatchDebounce)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json output, got %q", cfg.Output.Format)
	}
	if !cfg.Schedule.RunOnStart {
		t.Error("expected run_on_start")
	}
	if cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("expected redaction disabled")
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("expected default metrics path, got %q", cfg.Telemetry.Metrics.Path)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "malformed yaml",
			content: "scan: [",
			wantMsg: "failed to parse",
		},
		{
			name:    "invalid source type",
			content: "scan:\n  source:\n    type: parquet\n",
			wantMsg: "scan.source.type",
		},
		{
			name:    "invalid cron",
			content: "schedule:\n  cron: \"every day\"\n",
			wantMsg: "schedule.cron",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.Source.Dir != DefaultSourceDir {
		t.Errorf("expected default dir, got %q", cfg.Scan.Source.Dir)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Output.Dir != DefaultOutputDir {
		t.Errorf("expected default output dir, got %q", cfg.Output.Dir)
	}
}

func TestLoad_InvalidFileIsNotIgnored(t *testing.T) {
	_, err := Load(writeConfig(t, "output:\n  format: xml\n"))
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "output:\n  dir: ./from-file\n")

	t.Setenv("PIIAUDIT_OUTPUT_DIR", "./from-env")
	t.Setenv("PIIAUDIT_SCAN_WORKERS", "3")
	t.Setenv("PIIAUDIT_SCAN_SOURCE_TABLES", "users, logs,")
	t.Setenv("PIIAUDIT_POLICY_WATCH", "true")
	t.Setenv("PIIAUDIT_POLICY_WATCH_DEBOUNCE", "2s")
	t.Setenv("PIIAUDIT_TELEMETRY_LOGGING_REDACT_PII", "false")
	t.Setenv("PIIAUDIT_SCAN_SOURCE_ROW_LIMIT", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Output.Dir != "./from-env" {
		t.Errorf("expected env dir, got %q", cfg.Output.Dir)
	}
	if cfg.Scan.Workers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.Scan.Workers)
	}
	if len(cfg.Scan.Source.Tables) != 2 || cfg.Scan.Source.Tables[1] != "logs" {
		t.Errorf("unexpected tables %v", cfg.Scan.Source.Tables)
	}
	if !cfg.Policy.Watch || cfg.Policy.WatchDebounce != 2*time.Second {
		t.Errorf("unexpected watch settings %+v", cfg.Policy)
	}
	if cfg.Telemetry.Logging.RedactEnabled() {
		t.Error("expected redaction disabled by env")
	}
	if cfg.Scan.Source.RowLimit != DefaultRowLimit {
		t.Errorf("unparseable override should be ignored, got %d", cfg.Scan.Source.RowLimit)
	}
}

func TestLoadConfigWithEnvOverrides_Revalidates(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("PIIAUDIT_OUTPUT_FORMAT", "xml")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("expected revalidation error, got %v", err)
	}
}
