package dataset

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func seedDatabase(t *testing.T, driver, path string) {
	t.Helper()

	db, err := sql.Open(driver, path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE users (id INTEGER, email TEXT, full_name TEXT)`,
		`CREATE TABLE events (ip TEXT, payload BLOB)`,
		`INSERT INTO users VALUES (1, 'a@b.com', 'Ann Lee'), (2, 'c@d.org', NULL), (3, 'e@f.net', 'Bo Chan')`,
		`INSERT INTO events VALUES ('8.8.8.8', x'00'), ('1.1.1.1', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to exec %q: %v", stmt, err)
		}
	}
}

func TestSQLSource_Load(t *testing.T) {
	for _, driver := range []string{"sqlite3", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "warehouse.db")
			seedDatabase(t, driver, path)

			src, err := NewSQLSource(SQLConfig{Driver: driver, DSN: path, RowLimit: 2})
			if err != nil {
				t.Fatalf("NewSQLSource() error = %v", err)
			}

			tables, err := src.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(tables) != 2 || tables[0].Name != "events" || tables[1].Name != "users" {
				t.Fatalf("tables = %+v", tables)
			}

			users := tables[1]
			if len(users.Columns) != 3 || users.Columns[1].Name != "email" {
				t.Fatalf("users columns = %+v", users.Columns)
			}
			email := users.Columns[1].Values
			if len(email) != 2 {
				t.Fatalf("row limit not applied: %d values", len(email))
			}
			if email[0] != "a@b.com" {
				t.Errorf("email[0] = %#v, want string", email[0])
			}
			if users.Columns[2].Values[1] != nil {
				t.Errorf("NULL should load as nil, got %#v", users.Columns[2].Values[1])
			}
		})
	}
}

func TestSQLSource_TableFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warehouse.db")
	seedDatabase(t, "sqlite", path)

	src, err := NewSQLSource(SQLConfig{Driver: "sqlite", DSN: path, Tables: []string{"users"}})
	if err != nil {
		t.Fatal(err)
	}
	tables, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "users" {
		t.Errorf("tables = %+v", tables)
	}
}

func TestNewSQLSource_Validation(t *testing.T) {
	if _, err := NewSQLSource(SQLConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Error("unsupported driver should fail")
	}
	if _, err := NewSQLSource(SQLConfig{Driver: "pgx"}); err == nil {
		t.Error("missing dsn should fail")
	}
	src, err := NewSQLSource(SQLConfig{Driver: "snowflake", DSN: "u:p@acct/db"})
	if err != nil {
		t.Fatal(err)
	}
	if src.cfg.RowLimit != DefaultRowLimit {
		t.Errorf("RowLimit = %d, want default", src.cfg.RowLimit)
	}
}

func TestSQLSource_ConnectError(t *testing.T) {
	src, err := NewSQLSource(SQLConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "missing", "db.sqlite")})
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Load(context.Background())
	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("Load() error = %v, want *SourceError", err)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent() = %s", got)
	}
}
