package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/cli"
)

var auditFlags struct {
	output          string
	failOnViolation bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Scan the dataset and evaluate policies",
	Long: `Run the complete pipeline once: load the data source, build the PII
registry, write it, evaluate every policy and write the violations report.

Examples:
  # One-off audit
  piiaudit audit

  # CI gate: exit code 2 when any policy is violated
  piiaudit audit --fail-on-violation --output json`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "text", "summary format: text, json")
	auditCmd.Flags().BoolVar(&auditFlags.failOnViolation, "fail-on-violation", false, "exit with code 2 when any policy is violated")
}

func runAudit(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseOutputFormat(auditFlags.output); err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	runner, err := e.newRunner(true, true)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	res, err := runner.Run(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	if err := printResult(cmd.OutOrStdout(), auditFlags.output, res); err != nil {
		return err
	}
	return checkViolations(res, auditFlags.failOnViolation)
}
