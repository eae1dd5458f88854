package policy

import (
	"slices"
	"strings"

	"mercator-hq/piiaudit/pkg/pii"
)

// Rule is a single compliance policy.
type Rule struct {
	// ID uniquely identifies the rule. Required.
	ID string

	// ForbiddenTags are tags that must not appear in any in-scope column.
	ForbiddenTags []pii.Tag

	// Scope restricts which tables the rule inspects.
	Scope Scope

	// RequireTagForDetected flags in-scope registry rows that carry no tags.
	RequireTagForDetected bool
}

// Scope selects the tables a rule applies to. Both filters are optional; when
// both are set a table must satisfy each of them.
type Scope struct {
	// Tables is an explicit allow-list of table names.
	Tables []string

	// NamePrefix requires table names to start with this prefix.
	NamePrefix string
}

// Includes reports whether table is in scope.
func (s Scope) Includes(table string) bool {
	if len(s.Tables) > 0 && !slices.Contains(s.Tables, table) {
		return false
	}
	if s.NamePrefix != "" && !strings.HasPrefix(table, s.NamePrefix) {
		return false
	}
	return true
}

// IsZero reports whether the scope applies to every table.
func (s Scope) IsZero() bool {
	return len(s.Tables) == 0 && s.NamePrefix == ""
}

// RuleSpec is the document form of a Rule.
type RuleSpec struct {
	ID                    string   `yaml:"id" json:"id"`
	ForbiddenTags         []string `yaml:"forbidden_tags,omitempty" json:"forbidden_tags,omitempty"`
	AppliesToTables       []string `yaml:"applies_to_tables,omitempty" json:"applies_to_tables,omitempty"`
	TableNamePrefix       string   `yaml:"table_name_prefix,omitempty" json:"table_name_prefix,omitempty"`
	RequireTagForDetected bool     `yaml:"require_tag_for_detected,omitempty" json:"require_tag_for_detected,omitempty"`
}

// Rule converts the spec into a Rule. Forbidden tags are trimmed and blank
// entries dropped.
func (s RuleSpec) Rule() Rule {
	var forbidden []pii.Tag
	for _, tag := range s.ForbiddenTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			forbidden = append(forbidden, pii.Tag(tag))
		}
	}
	if len(forbidden) > 0 {
		forbidden = pii.SortTags(forbidden)
	}
	return Rule{
		ID:            strings.TrimSpace(s.ID),
		ForbiddenTags: forbidden,
		Scope: Scope{
			Tables:     slices.Clone(s.AppliesToTables),
			NamePrefix: s.TableNamePrefix,
		},
		RequireTagForDetected: s.RequireTagForDetected,
	}
}

// Document is the top-level policy file structure.
type Document struct {
	Policies []RuleSpec `yaml:"policies" json:"policies"`
}
