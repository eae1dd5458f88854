/*
Package cli provides helpers shared by the piiaudit commands.

Output formatting renders command results as aligned text or JSON:

	table := &cli.Table{Headers: []string{"tag", "name_pattern"}}
	table.AddRow("email", `\bemail\b|e[-_]?mail`)
	cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, table)

Errors returned by commands map to exit codes with ExitCode; a
ViolationsError (from audit --fail-on-violation) exits with code 2.

Signal handling for graceful shutdown:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
