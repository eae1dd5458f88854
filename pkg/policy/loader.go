package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mercator-hq/piiaudit/pkg/pii"
)

// Parse decodes a policy document and validates the resulting rules.
// JSON documents are accepted since JSON is a subset of YAML.
// A document without a policies key yields an empty rule set.
func Parse(data []byte) ([]Rule, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}

	rules := make([]Rule, len(doc.Policies))
	for i, spec := range doc.Policies {
		rules[i] = spec.Rule()
	}

	if err := Validate(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadFile reads and parses the policy document at path.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %q: %w", path, err)
	}
	return rules, nil
}

// Validate checks that every rule has an id and that ids are unique.
// All problems are reported together in a *ValidationError.
func Validate(rules []Rule) error {
	var errs []FieldError
	seen := make(map[string]int, len(rules))

	for i, rule := range rules {
		field := fmt.Sprintf("policies[%d].id", i)
		if rule.ID == "" {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "id is required",
			})
			continue
		}
		if first, dup := seen[rule.ID]; dup {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("duplicate id %q (first declared at policies[%d])", rule.ID, first),
			})
			continue
		}
		seen[rule.ID] = i
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Lint reports rules that are valid but unlikely to do what their author
// intended. It never fails a load.
func Lint(rules []Rule, catalog *pii.Catalog) []FieldError {
	var warnings []FieldError

	for i, rule := range rules {
		prefix := fmt.Sprintf("policies[%d]", i)

		if len(rule.ForbiddenTags) == 0 && !rule.RequireTagForDetected {
			warnings = append(warnings, FieldError{
				Field:   prefix,
				Message: fmt.Sprintf("rule %q has no forbidden_tags and does not require tags; it can never fire", rule.ID),
			})
		}

		if catalog != nil {
			for _, tag := range rule.ForbiddenTags {
				if !catalog.Has(tag) {
					warnings = append(warnings, FieldError{
						Field: prefix + ".forbidden_tags",
						Message: fmt.Sprintf("tag %q is not in the catalog and will never be detected (known tags: %s)",
							tag, pii.JoinTags(catalog.Tags())),
					})
				}
			}
		}

		if rule.Scope.NamePrefix != "" && len(rule.Scope.Tables) > 0 {
			matched := false
			for _, table := range rule.Scope.Tables {
				if rule.Scope.Includes(table) {
					matched = true
					break
				}
			}
			if !matched {
				warnings = append(warnings, FieldError{
					Field:   prefix + ".table_name_prefix",
					Message: fmt.Sprintf("no table in applies_to_tables starts with %q; the rule matches nothing", rule.Scope.NamePrefix),
				})
			}
		}
	}

	return warnings
}
