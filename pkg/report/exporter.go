package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"mercator-hq/piiaudit/pkg/pii"
	"mercator-hq/piiaudit/pkg/policy"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Column headers.
var (
	RegistryHeader  = []string{"table", "column", "pii_tags", "reason"}
	ViolationHeader = []string{"policy_id", "table", "column", "pii_tags", "reason"}
)

// Exporter writes result rows in one format.
type Exporter interface {
	// Format returns the format name, also used as the file extension.
	Format() string

	// ExportRegistry writes registry rows to w.
	ExportRegistry(ctx context.Context, rows []pii.RegistryRow, w io.Writer) error

	// ExportViolations writes violation rows to w.
	ExportViolations(ctx context.Context, rows []policy.ViolationRow, w io.Writer) error
}

// NewExporter returns the exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case FormatCSV, "":
		return CSVExporter{}, nil
	case FormatJSON:
		return JSONExporter{Pretty: true}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// CSVExporter writes rows as CSV with a header row.
type CSVExporter struct{}

// Format returns "csv".
func (CSVExporter) Format() string {
	return FormatCSV
}

// ExportRegistry writes registry rows.
func (e CSVExporter) ExportRegistry(ctx context.Context, rows []pii.RegistryRow, w io.Writer) error {
	return writeCSV(ctx, RegistryHeader, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.Table, r.Column, r.PIITags, r.Reason}
	}, w)
}

// ExportViolations writes violation rows.
func (e CSVExporter) ExportViolations(ctx context.Context, rows []policy.ViolationRow, w io.Writer) error {
	return writeCSV(ctx, ViolationHeader, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.PolicyID, r.Table, r.Column, r.PIITags, r.Reason}
	}, w)
}

func writeCSV(ctx context.Context, header []string, n int, row func(int) []string, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return NewExportError(FormatCSV, n, err)
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return NewExportError(FormatCSV, n, err)
		}
		if err := writer.Write(row(i)); err != nil {
			return NewExportError(FormatCSV, n, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError(FormatCSV, n, err)
	}
	return nil
}

// JSONExporter writes rows as a JSON array. An empty result is "[]".
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// Format returns "json".
func (JSONExporter) Format() string {
	return FormatJSON
}

// ExportRegistry writes registry rows.
func (e JSONExporter) ExportRegistry(ctx context.Context, rows []pii.RegistryRow, w io.Writer) error {
	if rows == nil {
		rows = []pii.RegistryRow{}
	}
	return e.write(ctx, rows, len(rows), w)
}

// ExportViolations writes violation rows.
func (e JSONExporter) ExportViolations(ctx context.Context, rows []policy.ViolationRow, w io.Writer) error {
	if rows == nil {
		rows = []policy.ViolationRow{}
	}
	return e.write(ctx, rows, len(rows), w)
}

func (e JSONExporter) write(ctx context.Context, v any, n int, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return NewExportError(FormatJSON, n, err)
	}
	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return NewExportError(FormatJSON, n, err)
	}
	return nil
}
