package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/cli"
	"mercator-hq/piiaudit/pkg/report"
)

var evaluateFlags struct {
	registry        string
	output          string
	failOnViolation bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate policies against a saved PII registry",
	Long: `Read a PII registry written by a previous scan and evaluate the configured
policies against it. The violations report is written to the output
directory.

Examples:
  # Evaluate the registry in the output directory
  piiaudit evaluate

  # Evaluate a specific registry and fail on violations (exit code 2)
  piiaudit evaluate --registry out/pii_scan.csv --fail-on-violation`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.registry, "registry", "r", "", "registry file (default: pii_scan file in the output directory)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.output, "output", "o", "text", "summary format: text, json")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.failOnViolation, "fail-on-violation", false, "exit with code 2 when any policy is violated")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseOutputFormat(evaluateFlags.output); err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	path := evaluateFlags.registry
	if path == "" {
		exporter, err := report.NewExporter(e.cfg.Output.Format)
		if err != nil {
			return err
		}
		path = report.ScanPath(e.cfg.Output.Dir, exporter)
	}

	registry, err := report.ReadRegistryFile(path)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	runner, err := e.newRunner(false, true)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	res, err := runner.Evaluate(commandContext(cmd), registry)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	if err := printResult(cmd.OutOrStdout(), evaluateFlags.output, res); err != nil {
		return err
	}
	return checkViolations(res, evaluateFlags.failOnViolation)
}
