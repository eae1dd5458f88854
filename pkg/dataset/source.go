package dataset

import (
	"context"
	"fmt"
	"slices"

	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/pii"
)

// Source loads tables for a scan.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Load returns the tables in a deterministic order.
	Load(ctx context.Context) ([]pii.Table, error)
}

// SourceError reports a failed load.
type SourceError struct {
	Source    string // Source name (e.g. "csv:data")
	Operation string // Operation that failed ("list", "read", "query", ...)
	Cause     error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("dataset error [source=%s, operation=%s]: %v", e.Source, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

func newSourceError(source, operation string, cause error) *SourceError {
	return &SourceError{Source: source, Operation: operation, Cause: cause}
}

// Open builds the source selected by cfg.
func Open(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "csv", "":
		return &CSVDirSource{Dir: cfg.Dir, Tables: cfg.Tables}, nil
	case "json":
		return &DocumentSource{Path: cfg.File, Tables: cfg.Tables}, nil
	case "sql":
		return NewSQLSource(SQLConfig{
			Driver:   cfg.Driver,
			DSN:      cfg.DSN,
			Schema:   cfg.Schema,
			Tables:   cfg.Tables,
			RowLimit: cfg.RowLimit,
		})
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

// selected reports whether name passes an optional allow-list.
func selected(allow []string, name string) bool {
	return len(allow) == 0 || slices.Contains(allow, name)
}
