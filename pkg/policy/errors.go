package policy

import (
	"fmt"
	"strings"
)

// FieldError describes a problem with one field of one rule.
type FieldError struct {
	// Field is the path to the offending field (e.g. "policies[2].id").
	Field string

	// Message is a human-readable description.
	Message string
}

// Error returns the field path and message.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a rule set.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted list of all field errors.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "policy validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("policy validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("policy validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}
