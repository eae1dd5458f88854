package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mercator-hq/piiaudit/pkg/config"
	"mercator-hq/piiaudit/pkg/pii"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestReadCSV_TypeInference(t *testing.T) {
	input := strings.Join([]string{
		"id,score,active,email,mixed,zip,empty",
		"1,1.5,True,a@b.com,x,02139,",
		"2,,false,,7,,NA",
		"3,3,TRUE,c@d.org,y,10001,",
	}, "\n")

	table, err := ReadCSV(strings.NewReader(input), "users")
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if table.Name != "users" || len(table.Columns) != 7 {
		t.Fatalf("unexpected table %+v", table)
	}

	want := map[string][]any{
		"id":     {int64(1), int64(2), int64(3)},
		"score":  {1.5, nil, 3.0},
		"active": {true, false, true},
		"email":  {"a@b.com", nil, "c@d.org"},
		"mixed":  {"x", "7", "y"},
		"zip":    {2139.0, nil, 10001.0},
		"empty":  {nil, nil, nil},
	}
	for _, col := range table.Columns {
		if !reflect.DeepEqual(col.Values, want[col.Name]) {
			t.Errorf("column %s = %#v, want %#v", col.Name, col.Values, want[col.Name])
		}
	}
}

func TestReadCSV_ShortRowsAndEmptyFile(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b\n1\n"), "t")
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got := table.Columns[1].Values; len(got) != 1 || got[0] != nil {
		t.Errorf("short row should pad with null, got %#v", got)
	}

	table, err = ReadCSV(strings.NewReader(""), "empty")
	if err != nil {
		t.Fatalf("ReadCSV() on empty input error = %v", err)
	}
	if len(table.Columns) != 0 {
		t.Errorf("expected no columns, got %d", len(table.Columns))
	}
}

// TestCSVDirSource_Load tests ordering, naming and filtering of the
// directory source.
func TestCSVDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "email\na@b.com\n")
	writeFile(t, dir, "logs.csv", "ip\n8.8.8.8\n")
	writeFile(t, dir, "notes.txt", "ignored")

	src := &CSVDirSource{Dir: dir}
	tables, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var names []string
	for _, tbl := range tables {
		names = append(names, tbl.Name)
	}
	if !reflect.DeepEqual(names, []string{"logs", "users"}) {
		t.Errorf("tables = %v, want [logs users]", names)
	}

	src.Tables = []string{"users"}
	tables, err = src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "users" {
		t.Errorf("filtered tables = %+v", tables)
	}
}

func TestCSVDirSource_Errors(t *testing.T) {
	src := &CSVDirSource{Dir: filepath.Join(t.TempDir(), "missing")}
	_, err := src.Load(context.Background())

	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("Load() error = %v, want *SourceError", err)
	}
	if serr.Operation != "list" || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}

	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "a,b\n\"unterminated\n")
	if _, err := (&CSVDirSource{Dir: dir}).Load(context.Background()); err == nil {
		t.Error("Load() should fail on malformed CSV")
	}
}

// TestCSVDirSource_Scan tests the loader feeding the scanner.
func TestCSVDirSource_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.csv", "email,note\na@b.com,hello\n")

	tables, err := (&CSVDirSource{Dir: dir}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	reg, err := pii.NewScanner(pii.NewClassifier(nil)).Scan(context.Background(), tables)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 || reg.Rows[0].TagString() != "email" || reg.Rows[0].ReasonString() != "name:email" {
		t.Errorf("registry = %+v", reg.Rows)
	}
}

func TestDocumentSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.json", `{"tables": [
		{"name": "users", "columns": [{"name": "email", "values": ["a@b.com", null, 3]}]},
		{"name": "logs", "columns": []}
	]}`)

	tables, err := (&DocumentSource{Path: filepath.Join(dir, "data.json")}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tables) != 2 || tables[0].Name != "users" || tables[1].Name != "logs" {
		t.Fatalf("tables = %+v", tables)
	}
	if got := tables[0].Columns[0].Values; len(got) != 3 || got[0] != "a@b.com" || got[1] != nil {
		t.Errorf("values = %#v", got)
	}

	writeFile(t, dir, "noname.yaml", "tables:\n  - columns: []\n")
	if _, err := (&DocumentSource{Path: filepath.Join(dir, "noname.yaml")}).Load(context.Background()); err == nil {
		t.Error("Load() should reject a table without a name")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.SourceConfig
		wantName string
		wantErr  bool
	}{
		{name: "csv", cfg: config.SourceConfig{Type: "csv", Dir: "data"}, wantName: "csv:data"},
		{name: "json", cfg: config.SourceConfig{Type: "json", File: "d.json"}, wantName: "document:d.json"},
		{name: "sql", cfg: config.SourceConfig{Type: "sql", Driver: "pgx", DSN: "postgres://localhost/db"}, wantName: "sql:pgx"},
		{name: "sql bad driver", cfg: config.SourceConfig{Type: "sql", Driver: "oracle", DSN: "x"}, wantErr: true},
		{name: "unknown", cfg: config.SourceConfig{Type: "parquet"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && src.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", src.Name(), tt.wantName)
			}
		})
	}
}
