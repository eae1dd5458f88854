package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/cli"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "piiaudit",
	Short: "PII column classifier and policy auditor",
	Long: `piiaudit scans tabular datasets for columns holding personally identifiable
information, records them in a PII registry and evaluates data-governance
policies against that registry.

Features:
  - Name, value and heuristic based PII detection
  - CSV directory, JSON/YAML document and SQL database sources
  - YAML/JSON policy documents, optionally pulled from Git
  - Scheduled audits with Prometheus metrics and health endpoints`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code matching the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "piiaudit.yaml", "config file path (defaults apply when missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
