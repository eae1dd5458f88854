package pii

import "strings"

// Classifier assigns catalog tags to a single column.
// A Classifier holds no mutable state and is safe for concurrent use.
type Classifier struct {
	catalog *Catalog
}

// NewClassifier creates a classifier over catalog.
// A nil catalog selects DefaultCatalog.
func NewClassifier(catalog *Catalog) *Classifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Classifier{catalog: catalog}
}

// Catalog returns the catalog the classifier detects against.
func (c *Classifier) Catalog() *Catalog {
	return c.catalog
}

// Classify inspects one column's name and values. It returns false when no
// tag was detected; such columns have no classification.
func (c *Classifier) Classify(table, column string, values []any) (ColumnClassification, bool) {
	var (
		tags   []Tag
		reason []string
	)

	nameTag, byName := c.DetectByName(column)
	if byName {
		tags = append(tags, nameTag)
		reason = append(reason, NameReasonPrefix+string(nameTag))
	}

	sample, textual := sampleValues(values, ValueSampleSize)

	if valueTag, ok := c.DetectByValues(sample); ok && (!byName || valueTag != nameTag) {
		tags = append(tags, valueTag)
		reason = append(reason, ValueReasonPrefix+string(valueTag))
	}

	if len(tags) == 0 && textual {
		heuristic := sample
		if len(heuristic) > HeuristicSampleSize {
			heuristic = heuristic[:HeuristicSampleSize]
		}
		if looksLikeNames(heuristic) {
			tags = append(tags, TagName)
			reason = append(reason, HeuristicReason)
		}
	}

	if len(tags) == 0 {
		return ColumnClassification{}, false
	}

	if len(reason) == 0 {
		reason = []string{NoReason}
	}

	return ColumnClassification{
		Table:  table,
		Column: column,
		Tags:   SortTags(tags),
		Reason: reason,
	}, true
}

// DetectByName returns the first catalog tag whose name pattern matches the
// lower-cased column name.
func (c *Classifier) DetectByName(column string) (Tag, bool) {
	lower := strings.ToLower(column)
	for _, entry := range c.catalog.entries {
		if entry.NamePattern == nil {
			continue
		}
		if entry.NamePattern.MatchString(lower) {
			return entry.Tag, true
		}
	}
	return "", false
}

// DetectByValues returns the first catalog tag whose value pattern fully
// matches at least ValueMatchThreshold of the sampled values. Only the first
// ValueSampleSize values are considered.
func (c *Classifier) DetectByValues(sample []string) (Tag, bool) {
	if len(sample) == 0 {
		return "", false
	}
	if len(sample) > ValueSampleSize {
		sample = sample[:ValueSampleSize]
	}

	for _, entry := range c.catalog.entries {
		if entry.ValuePattern == nil {
			continue
		}
		matches := 0
		for _, v := range sample {
			if entry.ValuePattern.MatchString(v) {
				matches++
			}
		}
		if matches >= ValueMatchThreshold {
			return entry.Tag, true
		}
	}
	return "", false
}

// looksLikeNames reports whether enough values contain whitespace to suggest
// human-readable names.
func looksLikeNames(sample []string) bool {
	n := 0
	for _, v := range sample {
		if containsSpace(v) {
			n++
		}
	}
	return n >= HeuristicMatchThreshold
}
