package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/piiaudit/pkg/audit"
	"mercator-hq/piiaudit/pkg/cli"
)

var catalogFlags struct {
	output string
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the PII tags and their detection patterns",
	Long: `List every tag the classifier can assign, in detection order: the built-in
tags followed by the custom tags from scan.custom_tags.`,
	RunE: listCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVarP(&catalogFlags.output, "output", "o", "text", "output format: text, json")
}

func listCatalog(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(catalogFlags.output)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	catalog, err := audit.BuildCatalog(e.cfg.Scan.CustomTags)
	if err != nil {
		return cli.NewCommandError("catalog", err)
	}

	t := &cli.Table{Headers: []string{"tag", "name_pattern", "value_pattern"}}
	for _, entry := range catalog.Entries() {
		name, value := "-", "-"
		if entry.NamePattern != nil {
			name = entry.NamePattern.String()
		}
		if entry.ValuePattern != nil {
			value = entry.ValuePattern.String()
		}
		t.AddRow(string(entry.Tag), name, value)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), t)
}
