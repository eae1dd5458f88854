package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mercator-hq/piiaudit/pkg/pii"
)

// missingMarkers are cell values read as null, matching the usual dataframe
// defaults.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// CSVDirSource loads every *.csv file in Dir. Files are read in path order
// and each becomes a table named after the file stem.
type CSVDirSource struct {
	Dir string

	// Tables optionally restricts loading to these table names.
	Tables []string
}

// Name returns "csv:<dir>".
func (s *CSVDirSource) Name() string {
	return "csv:" + s.Dir
}

// Load reads the directory.
func (s *CSVDirSource) Load(ctx context.Context) ([]pii.Table, error) {
	if _, err := os.Stat(s.Dir); err != nil {
		return nil, newSourceError(s.Name(), "list", err)
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.csv"))
	if err != nil {
		return nil, newSourceError(s.Name(), "list", err)
	}
	sort.Strings(paths)

	tables := make([]pii.Table, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, newSourceError(s.Name(), "read", err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if !selected(s.Tables, name) {
			continue
		}
		table, err := ReadCSVFile(path, name)
		if err != nil {
			return nil, newSourceError(s.Name(), "read", err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// ReadCSVFile reads one CSV file into a table named name.
func ReadCSVFile(path, name string) (pii.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return pii.Table{}, err
	}
	defer f.Close()

	table, err := ReadCSV(f, name)
	if err != nil {
		return pii.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadCSV reads a CSV stream with a header row. Missing cells are null.
// Columns whose non-null cells all parse as integers, floats or booleans are
// converted to typed values; an integer column containing nulls becomes a
// float column.
func ReadCSV(r io.Reader, name string) (pii.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return pii.Table{Name: name}, nil
	}
	if err != nil {
		return pii.Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	cells := make([][]*string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pii.Table{}, fmt.Errorf("failed to read record: %w", err)
		}
		for i := range header {
			var cell *string
			if i < len(record) {
				if _, missing := missingMarkers[record[i]]; !missing {
					v := record[i]
					cell = &v
				}
			}
			cells[i] = append(cells[i], cell)
		}
	}

	table := pii.Table{Name: name, Columns: make([]pii.Column, len(header))}
	for i, col := range header {
		table.Columns[i] = pii.Column{Name: col, Values: inferColumn(cells[i])}
	}
	return table, nil
}

// inferColumn converts raw cells to the narrowest type every non-null cell
// accepts.
func inferColumn(cells []*string) []any {
	values := make([]any, len(cells))

	hasNull := false
	allInt, allFloat, allBool := true, true, true
	nonNull := 0
	for _, c := range cells {
		if c == nil {
			hasNull = true
			continue
		}
		nonNull++
		if allInt {
			if _, err := strconv.ParseInt(*c, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(*c, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(*c); !ok {
				allBool = false
			}
		}
	}

	for i, c := range cells {
		if c == nil {
			continue
		}
		switch {
		case nonNull == 0:
		case allInt && !hasNull:
			n, _ := strconv.ParseInt(*c, 10, 64)
			values[i] = n
		case allInt || allFloat:
			f, _ := strconv.ParseFloat(*c, 64)
			values[i] = f
		case allBool:
			b, _ := parseBool(*c)
			values[i] = b
		default:
			values[i] = *c
		}
	}
	return values
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}
