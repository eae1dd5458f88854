package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/cli"
)

var scanFlags struct {
	output string
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Classify dataset columns and write the PII registry",
	Long: `Load every table of the configured data source, classify each column and
write the PII registry (pii_scan.csv or pii_scan.json) to the output
directory. Policies are not evaluated.

Examples:
  # Scan the CSV files under ./data
  piiaudit scan

  # Scan with a custom config and JSON summary
  piiaudit scan --config audit.yaml --output json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanFlags.output, "output", "o", "text", "summary format: text, json")
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(scanFlags.output)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	runner, err := e.newRunner(true, false)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}

	ctx := commandContext(cmd)
	res, err := runner.Scan(ctx)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	path, err := runner.WriteRegistry(ctx, res.Registry)
	if err != nil {
		return cli.NewCommandError("scan", fmt.Errorf("failed to write registry: %w", err))
	}

	t := &cli.Table{Headers: []string{"table", "column", "pii_tags", "reason"}}
	for _, row := range res.Registry.ToRows() {
		t.AddRow(row.Table, row.Column, row.PIITags, row.Reason)
	}
	summary := &cli.Table{Headers: []string{"item", "value"}}
	summary.AddRow("tables", strconv.Itoa(res.Tables))
	summary.AddRow("columns", strconv.Itoa(res.Columns))
	summary.AddRow("tagged_columns", strconv.Itoa(res.Registry.Len()))
	summary.AddRow("scan_report", path)

	out := cmd.OutOrStdout()
	formatter := cli.NewFormatter(format)
	if format == cli.FormatJSON {
		return formatter.FormatTo(out, t)
	}
	if err := formatter.FormatTo(out, summary); err != nil {
		return err
	}
	if len(t.Rows) > 0 {
		fmt.Fprintln(out)
		return formatter.FormatTo(out, t)
	}
	return nil
}
