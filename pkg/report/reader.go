package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mercator-hq/piiaudit/pkg/pii"
)

// ReadRegistryCSV reads registry rows written by CSVExporter. The header must
// match RegistryHeader.
func ReadRegistryCSV(r io.Reader) ([]pii.RegistryRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(RegistryHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, NewExportError(FormatCSV, 0, fmt.Errorf("missing header"))
	}
	if err != nil {
		return nil, NewExportError(FormatCSV, 0, err)
	}
	if !slices.Equal(header, RegistryHeader) {
		return nil, NewExportError(FormatCSV, 0, fmt.Errorf("unexpected header %q, want %q",
			strings.Join(header, ","), strings.Join(RegistryHeader, ",")))
	}

	var rows []pii.RegistryRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewExportError(FormatCSV, len(rows), err)
		}
		rows = append(rows, pii.RegistryRow{
			Table:   record[0],
			Column:  record[1],
			PIITags: record[2],
			Reason:  record[3],
		})
	}
	return rows, nil
}

// ReadRegistryJSON reads registry rows written by JSONExporter.
func ReadRegistryJSON(r io.Reader) ([]pii.RegistryRow, error) {
	var rows []pii.RegistryRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, NewExportError(FormatJSON, 0, err)
	}
	return rows, nil
}

// ReadRegistryFile reads a registry file, choosing the format from its
// extension (".json", anything else is CSV).
func ReadRegistryFile(path string) (pii.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return pii.Registry{}, fmt.Errorf("failed to open registry %q: %w", path, err)
	}
	defer f.Close()

	var rows []pii.RegistryRow
	if strings.EqualFold(filepath.Ext(path), ".json") {
		rows, err = ReadRegistryJSON(f)
	} else {
		rows, err = ReadRegistryCSV(f)
	}
	if err != nil {
		return pii.Registry{}, fmt.Errorf("failed to read registry %q: %w", path, err)
	}
	return pii.RegistryFromRows(rows), nil
}
