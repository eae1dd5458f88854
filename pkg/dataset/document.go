package dataset

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mercator-hq/piiaudit/pkg/pii"
)

// Document is the on-disk form read by DocumentSource:
//
//	{"tables": [{"name": "users", "columns": [{"name": "email", "values": ["a@b.com", null]}]}]}
type Document struct {
	Tables []DocumentTable `yaml:"tables" json:"tables"`
}

// DocumentTable is one table of a Document.
type DocumentTable struct {
	Name    string           `yaml:"name" json:"name"`
	Columns []DocumentColumn `yaml:"columns" json:"columns"`
}

// DocumentColumn is one column of a DocumentTable.
type DocumentColumn struct {
	Name   string `yaml:"name" json:"name"`
	Values []any  `yaml:"values" json:"values"`
}

// DocumentSource loads tables from a JSON or YAML document. Tables keep
// their document order.
type DocumentSource struct {
	Path string

	// Tables optionally restricts loading to these table names.
	Tables []string
}

// Name returns "document:<path>".
func (s *DocumentSource) Name() string {
	return "document:" + s.Path
}

// Load reads and decodes the document.
func (s *DocumentSource) Load(ctx context.Context) ([]pii.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, newSourceError(s.Name(), "read", err)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, newSourceError(s.Name(), "read", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, newSourceError(s.Name(), "decode", err)
	}

	tables := make([]pii.Table, 0, len(doc.Tables))
	for i, dt := range doc.Tables {
		if dt.Name == "" {
			return nil, newSourceError(s.Name(), "decode", fmt.Errorf("tables[%d]: name is required", i))
		}
		if !selected(s.Tables, dt.Name) {
			continue
		}
		table := pii.Table{Name: dt.Name, Columns: make([]pii.Column, len(dt.Columns))}
		for j, dc := range dt.Columns {
			table.Columns[j] = pii.Column{Name: dc.Name, Values: dc.Values}
		}
		tables = append(tables, table)
	}
	return tables, nil
}
