package policy

import "mercator-hq/piiaudit/pkg/pii"

// Violation reasons.
const (
	// ForbiddenReasonPrefix starts the reason of a forbidden-tag violation; it
	// is followed by the sorted, comma-joined offending tags.
	ForbiddenReasonPrefix = "forbidden tags present: "

	// MissingTagReason is the reason of a missing-tag violation.
	MissingTagReason = "detected PII missing tag"
)

// Violation is a single rule failure for one registry row.
type Violation struct {
	PolicyID string
	Table    string
	Column   string

	// Tags are copied from the triggering registry row, sorted canonically.
	Tags []pii.Tag

	Reason string
}

// Row converts the violation into its flat output form.
func (v Violation) Row() ViolationRow {
	return ViolationRow{
		PolicyID: v.PolicyID,
		Table:    v.Table,
		Column:   v.Column,
		PIITags:  pii.JoinTags(v.Tags),
		Reason:   v.Reason,
	}
}

// ViolationRow is the flat representation consumed by reporting and alerting
// collaborators.
type ViolationRow struct {
	PolicyID string `json:"policy_id"`
	Table    string `json:"table"`
	Column   string `json:"column"`
	PIITags  string `json:"pii_tags"`
	Reason   string `json:"reason"`
}

// ViolationRows flattens violations, preserving order.
func ViolationRows(violations []Violation) []ViolationRow {
	rows := make([]ViolationRow, len(violations))
	for i, v := range violations {
		rows[i] = v.Row()
	}
	return rows
}

// CountByPolicy returns the number of violations per policy id.
func CountByPolicy(violations []Violation) map[string]int {
	counts := make(map[string]int)
	for _, v := range violations {
		counts[v.PolicyID]++
	}
	return counts
}
