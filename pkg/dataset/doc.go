// Package dataset loads tables for the PII scanner.
//
// A Source turns some external dataset into in-memory pii.Table values:
//
//   - CSVDirSource reads every *.csv file of a directory, one table per file.
//   - DocumentSource reads a JSON or YAML document listing tables and columns.
//   - SQLSource samples base tables from a database through database/sql,
//     using the sqlite3, sqlite, pgx or snowflake drivers.
//
// Open selects a source from configuration. Every load failure is returned as
// a *SourceError naming the source and the failing operation.
package dataset
