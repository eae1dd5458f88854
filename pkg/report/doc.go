// Package report writes scan and evaluation results as flat rows.
//
// Registry rows have the columns table, column, pii_tags and reason;
// violation rows have policy_id, table, column, pii_tags and reason. Both can
// be written as CSV (with a header, even when empty) or as a JSON array.
// Registry files written by a scan can be read back so that policies can be
// evaluated without scanning again.
package report
