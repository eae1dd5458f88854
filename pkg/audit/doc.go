// Package audit wires the data sources, the PII scanner, the policy
// evaluator and the report writers into a single pipeline.
//
// A Runner performs one audit: it loads tables from a dataset.Source,
// classifies every column, evaluates the active policies against the
// resulting registry and writes pii_scan.<format> and violations.<format> to
// the output directory. Each run gets a UUID that is attached to its log
// records, spans and result.
//
// Policies come from a PolicySource: either a policy.Store backed by a local
// file (optionally hot-reloaded by a watcher) or a Git repository that is
// pulled at the start of every run, in which case the result records the
// policy commit.
//
// A Scheduler repeats the run on a cron expression and never lets two runs
// overlap; a tick that fires during a run is skipped and counted.
package audit
