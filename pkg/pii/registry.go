package pii

import "strings"

// ColumnClassification is the detection result for one tagged column.
// It is only materialized when at least one tag was found.
type ColumnClassification struct {
	Table  string
	Column string

	// Tags are sorted canonically and never empty for scanner output.
	Tags []Tag

	// Reason lists detection markers in the order they fired.
	Reason []string
}

// ReasonString joins the detection markers with commas.
func (c ColumnClassification) ReasonString() string {
	if len(c.Reason) == 0 {
		return NoReason
	}
	return strings.Join(c.Reason, ",")
}

// TagString returns the comma-joined canonical tag list.
func (c ColumnClassification) TagString() string {
	return JoinTags(c.Tags)
}

// HasTag reports whether the classification carries tag.
func (c ColumnClassification) HasTag(tag Tag) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Row converts the classification into its flat output form.
func (c ColumnClassification) Row() RegistryRow {
	return RegistryRow{
		Table:   c.Table,
		Column:  c.Column,
		PIITags: c.TagString(),
		Reason:  c.ReasonString(),
	}
}

// Registry is the ordered set of tagged columns produced by a scan.
type Registry struct {
	Rows []ColumnClassification
}

// Len returns the number of tagged columns.
func (r Registry) Len() int {
	return len(r.Rows)
}

// TagCounts returns how many registry rows carry each tag.
func (r Registry) TagCounts() map[Tag]int {
	counts := make(map[Tag]int)
	for _, row := range r.Rows {
		for _, tag := range row.Tags {
			counts[tag]++
		}
	}
	return counts
}

// ToRows flattens the registry into output rows, preserving order.
func (r Registry) ToRows() []RegistryRow {
	rows := make([]RegistryRow, len(r.Rows))
	for i, c := range r.Rows {
		rows[i] = c.Row()
	}
	return rows
}

// RegistryRow is the flat representation of a registry entry consumed by
// reporting collaborators.
type RegistryRow struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	PIITags string `json:"pii_tags"`
	Reason  string `json:"reason"`
}

// RegistryFromRows rebuilds a Registry from flat rows, e.g. a previously
// written scan. Rows with an empty pii_tags field keep an empty tag set.
func RegistryFromRows(rows []RegistryRow) Registry {
	reg := Registry{Rows: make([]ColumnClassification, 0, len(rows))}
	for _, row := range rows {
		var reason []string
		if row.Reason != "" && row.Reason != NoReason {
			reason = strings.Split(row.Reason, ",")
		}
		reg.Rows = append(reg.Rows, ColumnClassification{
			Table:  row.Table,
			Column: row.Column,
			Tags:   SplitTags(row.PIITags),
			Reason: reason,
		})
	}
	return reg
}
