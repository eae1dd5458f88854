package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/audit"
	"mercator-hq/piiaudit/pkg/cli"
	"mercator-hq/piiaudit/pkg/pii"
	"mercator-hq/piiaudit/pkg/policy"
)

var lintFlags struct {
	file   string
	strict bool
	output string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a policy file",
	Long: `Validate a policy document and report rules that can never fire.

The lint command performs:
  - YAML/JSON syntax validation
  - Rule validation (required and unique ids)
  - Catalog checks (forbidden tags that are never detected)
  - Scope checks (table lists excluded by the name prefix)

Examples:
  # Lint the configured policy file
  piiaudit lint

  # Lint a specific file, treating warnings as errors
  piiaudit lint --file policies.yaml --strict

  # JSON output for CI/CD
  piiaudit lint --file policies.yaml --output json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate (default: policy.file_path)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVarP(&lintFlags.output, "output", "o", "text", "output format: text, json")
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(lintFlags.output)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	path := lintFlags.file
	if path == "" {
		path = e.cfg.Policy.FilePath
	}

	rules, err := policy.LoadFile(path)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	catalog, err := audit.BuildCatalog(e.cfg.Scan.CustomTags)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}
	warnings := policy.Lint(rules, catalog)

	out := cmd.OutOrStdout()
	formatter := cli.NewFormatter(format)
	if format == cli.FormatJSON {
		if err := formatter.FormatTo(out, struct {
			File     string `json:"file"`
			Rules    any    `json:"rules"`
			Warnings any    `json:"warnings"`
		}{
			File:     path,
			Rules:    ruleRecords(rules),
			Warnings: lintRecords(warnings),
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "✓ %s: %d rule(s) valid\n", path, len(rules))
		for _, w := range warnings {
			fmt.Fprintf(out, "  warning: %s\n", w.Error())
		}
		if len(rules) > 0 {
			fmt.Fprintln(out)
			if err := formatter.FormatTo(out, rulesTable(rules)); err != nil {
				return err
			}
		}
	}

	if lintFlags.strict && len(warnings) > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d warning(s) in strict mode", len(warnings)))
	}
	return nil
}

// rulesTable summarizes each rule's scope and checks.
func rulesTable(rules []policy.Rule) *cli.Table {
	t := &cli.Table{Headers: []string{"id", "scope", "forbidden_tags", "require_tag"}}
	for _, rule := range rules {
		forbidden := "-"
		if len(rule.ForbiddenTags) > 0 {
			forbidden = pii.JoinTags(rule.ForbiddenTags)
		}
		t.AddRow(rule.ID, describeScope(rule.Scope), forbidden, strconv.FormatBool(rule.RequireTagForDetected))
	}
	return t
}

func describeScope(s policy.Scope) string {
	if s.IsZero() {
		return "all tables"
	}
	var parts []string
	if len(s.Tables) > 0 {
		parts = append(parts, "tables="+strings.Join(s.Tables, ","))
	}
	if s.NamePrefix != "" {
		parts = append(parts, "prefix="+s.NamePrefix)
	}
	return strings.Join(parts, " ")
}

func ruleRecords(rules []policy.Rule) []map[string]string {
	t := rulesTable(rules)
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			rec[h] = row[j]
		}
		out[i] = rec
	}
	return out
}

func lintRecords(warnings []policy.FieldError) []map[string]string {
	out := make([]map[string]string, len(warnings))
	for i, w := range warnings {
		out[i] = map[string]string{"field": w.Field, "message": w.Message}
	}
	return out
}
