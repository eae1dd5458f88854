package pii

import (
	"fmt"
	"regexp"
	"strings"
)

// CatalogEntry pairs a tag with the patterns that detect it.
type CatalogEntry struct {
	// Tag is the category assigned when a pattern matches.
	Tag Tag

	// NamePattern is searched anywhere in the lower-cased column name.
	// Nil means the tag is never detected by name.
	NamePattern *regexp.Regexp

	// ValuePattern must match a whole sampled value; it is anchored at
	// compile time. Nil means the tag is never detected by value.
	ValuePattern *regexp.Regexp
}

// CatalogEntrySpec is the uncompiled form of a CatalogEntry, as found in
// configuration files.
type CatalogEntrySpec struct {
	Tag          string `yaml:"tag" json:"tag"`
	NamePattern  string `yaml:"name_pattern" json:"name_pattern"`
	ValuePattern string `yaml:"value_pattern" json:"value_pattern"`
}

// Catalog is an immutable, ordered list of tag detectors.
// Order matters: name and value detection both stop at the first entry that
// matches.
type Catalog struct {
	entries []CatalogEntry
	index   map[Tag]int
}

// defaultCatalogSpecs lists the built-in tags in detection order.
var defaultCatalogSpecs = []CatalogEntrySpec{
	{
		Tag:          string(TagEmail),
		NamePattern:  `\bemail\b|e[-_]?mail`,
		ValuePattern: `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`,
	},
	{
		Tag:          string(TagPhone),
		NamePattern:  `\bphone\b|contact[-_]?number|mobile`,
		ValuePattern: `^(\+?\d[\d\s().-]{7,})$`,
	},
	{
		Tag:          string(TagIP),
		NamePattern:  `ip([-_]?address)?|^ip$`,
		ValuePattern: `^(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)$`,
	},
	{
		Tag:          string(TagDOB),
		NamePattern:  `date[-_]?of[-_]?birth|\bdob\b|birth[_-]?date`,
		ValuePattern: `^(?:\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})$`,
	},
	{
		Tag:         string(TagName),
		NamePattern: `\bname\b|full[-_]?name|first[_-]?name|last[_-]?name`,
	},
	{
		Tag:          string(TagNationalID),
		NamePattern:  `\b(ssn|nin|passport|national[_-]?id|aadhar|aadhaar)\b`,
		ValuePattern: `^(?:\d{3}-?\d{2}-?\d{4})$`,
	},
}

// DefaultCatalog returns the built-in catalog. Each call compiles a fresh
// instance; callers are expected to build it once and pass it around.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultCatalogSpecs)
	if err != nil {
		panic(fmt.Sprintf("pii: invalid built-in catalog: %v", err))
	}
	return c
}

// NewCatalog compiles specs into a Catalog, preserving their order.
// It fails on empty or duplicate tags, on entries without any pattern and on
// patterns that do not compile.
func NewCatalog(specs []CatalogEntrySpec) (*Catalog, error) {
	c := &Catalog{
		entries: make([]CatalogEntry, 0, len(specs)),
		index:   make(map[Tag]int, len(specs)),
	}
	for i, spec := range specs {
		if err := c.add(spec); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}
	return c, nil
}

// Extend returns a new Catalog with specs appended after the existing entries.
// The receiver is not modified.
func (c *Catalog) Extend(specs []CatalogEntrySpec) (*Catalog, error) {
	out := &Catalog{
		entries: make([]CatalogEntry, len(c.entries), len(c.entries)+len(specs)),
		index:   make(map[Tag]int, len(c.entries)+len(specs)),
	}
	copy(out.entries, c.entries)
	for tag, i := range c.index {
		out.index[tag] = i
	}
	for i, spec := range specs {
		if err := out.add(spec); err != nil {
			return nil, fmt.Errorf("custom catalog entry %d: %w", i, err)
		}
	}
	return out, nil
}

func (c *Catalog) add(spec CatalogEntrySpec) error {
	tag := Tag(strings.TrimSpace(spec.Tag))
	if tag == "" {
		return fmt.Errorf("tag is required")
	}
	if strings.Contains(string(tag), ",") {
		return fmt.Errorf("tag %q must not contain a comma", tag)
	}
	if _, exists := c.index[tag]; exists {
		return fmt.Errorf("duplicate tag %q", tag)
	}
	if spec.NamePattern == "" && spec.ValuePattern == "" {
		return fmt.Errorf("tag %q needs a name_pattern or a value_pattern", tag)
	}

	entry := CatalogEntry{Tag: tag}
	if spec.NamePattern != "" {
		re, err := regexp.Compile(spec.NamePattern)
		if err != nil {
			return fmt.Errorf("tag %q: invalid name_pattern: %w", tag, err)
		}
		entry.NamePattern = re
	}
	if spec.ValuePattern != "" {
		re, err := regexp.Compile(`^(?:` + spec.ValuePattern + `)$`)
		if err != nil {
			return fmt.Errorf("tag %q: invalid value_pattern: %w", tag, err)
		}
		entry.ValuePattern = re
	}

	c.index[tag] = len(c.entries)
	c.entries = append(c.entries, entry)
	return nil
}

// Entries returns a copy of the catalog entries in detection order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Tags returns the catalog tags in detection order.
func (c *Catalog) Tags() []Tag {
	tags := make([]Tag, len(c.entries))
	for i, e := range c.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Has reports whether tag is part of the catalog.
func (c *Catalog) Has(tag Tag) bool {
	_, ok := c.index[tag]
	return ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
