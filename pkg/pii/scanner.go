package pii

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Table is an in-memory table handed to the scanner by a data loader.
type Table struct {
	Name    string
	Columns []Column
}

// Column is one column of a Table. Values are nullable; nil marks a null.
type Column struct {
	Name   string
	Values []any
}

// ColumnCount returns the total number of columns across tables.
func ColumnCount(tables []Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Columns)
	}
	return n
}

// Scanner builds a Registry by classifying every column of every table.
type Scanner struct {
	classifier *Classifier
	workers    int
	logger     *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers bounds the number of tables classified concurrently.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithScanLogger sets the logger used for per-table debug output.
func WithScanLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a scanner over classifier.
func NewScanner(classifier *Classifier, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		classifier: classifier,
		logger:     slog.Default().With("component", "pii.scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// Scan classifies tables and returns the registry of tagged columns in
// table-then-column order. Identical input always yields an identical
// registry regardless of worker scheduling.
func (s *Scanner) Scan(ctx context.Context, tables []Table) (Registry, error) {
	perTable := make([][]ColumnClassification, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("scan table %q: %w", tables[i].Name, err)
			}
			perTable[i] = s.ScanTable(tables[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Registry{}, err
	}

	total := 0
	for _, rows := range perTable {
		total += len(rows)
	}
	reg := Registry{Rows: make([]ColumnClassification, 0, total)}
	for _, rows := range perTable {
		reg.Rows = append(reg.Rows, rows...)
	}
	return reg, nil
}

// ScanTable classifies the columns of a single table in column order.
func (s *Scanner) ScanTable(table Table) []ColumnClassification {
	var rows []ColumnClassification
	for _, col := range table.Columns {
		if c, ok := s.classifier.Classify(table.Name, col.Name, col.Values); ok {
			rows = append(rows, c)
		}
	}
	s.logger.Debug("table scanned",
		"table", table.Name,
		"columns", len(table.Columns),
		"tagged", len(rows),
	)
	return rows
}
