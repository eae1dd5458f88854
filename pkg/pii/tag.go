package pii

import (
	"slices"
	"strings"
)

// Tag is a category label for a kind of personally identifiable information.
type Tag string

// Built-in tags, listed in default catalog order.
const (
	TagEmail      Tag = "email"
	TagPhone      Tag = "phone"
	TagIP         Tag = "ip"
	TagDOB        Tag = "dob"
	TagName       Tag = "name"
	TagNationalID Tag = "national_id"
)

// Detection reason markers.
const (
	// NameReasonPrefix prefixes the tag detected from the column name.
	NameReasonPrefix = "name:"

	// ValueReasonPrefix prefixes the tag detected from sampled values.
	ValueReasonPrefix = "value:"

	// HeuristicReason marks a "name" tag assigned by the whitespace fallback.
	HeuristicReason = "heuristic:name_with_spaces"

	// NoReason is reported when tags exist without any recorded marker.
	NoReason = "n/a"
)

// String returns the tag name.
func (t Tag) String() string {
	return string(t)
}

// SortTags returns a deduplicated copy of tags in canonical (lexicographic) order.
func SortTags(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// JoinTags renders tags as the canonical comma-joined list used in output rows.
func JoinTags(tags []Tag) string {
	sorted := SortTags(tags)
	parts := make([]string, len(sorted))
	for i, tag := range sorted {
		parts[i] = string(tag)
	}
	return strings.Join(parts, ",")
}

// SplitTags parses a comma-joined tag list. Blank entries are dropped and the
// result is sorted canonically; an empty string yields an empty set.
func SplitTags(s string) []Tag {
	var tags []Tag
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, Tag(part))
	}
	return SortTags(tags)
}
