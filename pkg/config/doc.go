// Package config provides configuration management for the PII audit tool.
//
// Configuration is read from a YAML file, completed with defaults and
// optionally overridden from the environment. Every problem found during
// validation is reported together.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("piiaudit.yaml")             // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("piiaudit.yaml")
//	cfg, err := config.Load(path)                             // missing file means defaults
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PIIAUDIT_SECTION_FIELD:
//
//   - PIIAUDIT_SCAN_SOURCE_DIR overrides scan.source.dir
//   - PIIAUDIT_POLICY_FILE_PATH overrides policy.file_path
//   - PIIAUDIT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	scan:
//	  source:
//	    type: sql
//	    driver: sqlite3
//	    dsn: "file:warehouse.db?mode=ro"
//	    row_limit: 500
//	  custom_tags:
//	    - tag: iban
//	      value_pattern: '[A-Z]{2}\d{2}[A-Z0-9]{11,30}'
//
//	policy:
//	  file_path: policies.yaml
//	  watch: true
//
//	output:
//	  dir: output
//	  format: csv
//
//	schedule:
//	  cron: "0 2 * * *"
package config
