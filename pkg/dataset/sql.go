package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"

	"mercator-hq/piiaudit/pkg/pii"
)

// DefaultRowLimit is the number of rows sampled per table when none is set.
const DefaultRowLimit = 1000

// SQLConfig configures a SQLSource.
type SQLConfig struct {
	// Driver is a registered database/sql driver: "sqlite3"
	// (mattn/go-sqlite3), "sqlite" (modernc.org/sqlite), "pgx" or "snowflake".
	Driver string

	// DSN is passed to the driver unchanged.
	DSN string

	// Schema restricts discovery for information_schema databases. Empty
	// means "public" for pgx and the session schema for snowflake.
	Schema string

	// Tables optionally restricts loading to these table names.
	Tables []string

	// RowLimit caps the rows read per table.
	RowLimit int
}

// SQLSource samples base tables from a database.
type SQLSource struct {
	cfg    SQLConfig
	logger *slog.Logger
}

// NewSQLSource validates cfg and creates a source. The database is not
// contacted until Load.
func NewSQLSource(cfg SQLConfig) (*SQLSource, error) {
	switch cfg.Driver {
	case "sqlite3", "sqlite", "pgx", "snowflake":
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required for driver %q", cfg.Driver)
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = DefaultRowLimit
	}
	return &SQLSource{
		cfg:    cfg,
		logger: slog.Default().With("component", "dataset.sql", "driver", cfg.Driver),
	}, nil
}

// Name returns "sql:<driver>". The DSN is left out since it may carry
// credentials.
func (s *SQLSource) Name() string {
	return "sql:" + s.cfg.Driver
}

// Load lists the tables and samples each one in name order.
func (s *SQLSource) Load(ctx context.Context) ([]pii.Table, error) {
	db, err := sqlx.Open(s.cfg.Driver, s.cfg.DSN)
	if err != nil {
		return nil, newSourceError(s.Name(), "open", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, newSourceError(s.Name(), "connect", err)
	}

	names, err := s.listTables(ctx, db)
	if err != nil {
		return nil, newSourceError(s.Name(), "list", err)
	}

	tables := make([]pii.Table, 0, len(names))
	for _, name := range names {
		if !selected(s.cfg.Tables, name) {
			continue
		}
		table, err := s.sampleTable(ctx, db, name)
		if err != nil {
			return nil, newSourceError(s.Name(), "query", fmt.Errorf("table %q: %w", name, err))
		}
		s.logger.Debug("table sampled", "table", name, "columns", len(table.Columns))
		tables = append(tables, table)
	}
	return tables, nil
}

func (s *SQLSource) listTables(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var (
		query string
		args  []any
	)
	switch s.cfg.Driver {
	case "sqlite3", "sqlite":
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	case "pgx":
		schema := s.cfg.Schema
		if schema == "" {
			schema = "public"
		}
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name`
		args = []any{schema}
	case "snowflake":
		if s.cfg.Schema == "" {
			query = `SELECT table_name FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_type = 'BASE TABLE' ORDER BY table_name`
		} else {
			query = `SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name`
			args = []any{s.cfg.Schema}
		}
	}

	var names []string
	if err := db.SelectContext(ctx, &names, db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *SQLSource) sampleTable(ctx context.Context, db *sqlx.DB, name string) (pii.Table, error) {
	ref := quoteIdent(name)
	if s.cfg.Schema != "" && s.cfg.Driver != "sqlite3" && s.cfg.Driver != "sqlite" {
		ref = quoteIdent(s.cfg.Schema) + "." + ref
	}

	rows, err := db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", ref, s.cfg.RowLimit))
	if err != nil {
		return pii.Table{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return pii.Table{}, err
	}

	table := pii.Table{Name: name, Columns: make([]pii.Column, len(cols))}
	for i, col := range cols {
		table.Columns[i] = pii.Column{Name: col}
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return pii.Table{}, err
		}
		for i, v := range values {
			table.Columns[i].Values = append(table.Columns[i].Values, normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return pii.Table{}, err
	}
	return table, nil
}

// normalize turns driver byte slices into strings so text columns stay
// textual.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// quoteIdent quotes an identifier with double quotes, which all supported
// databases accept.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
