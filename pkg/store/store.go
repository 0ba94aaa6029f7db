// CLAUDE:SUMMARY Relational store for enriched names, categories, import runs and source checks (SQLite by default, Postgres via lib/pq).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the database.
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Store persists names and pipeline bookkeeping.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database described by cfg and creates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "namestat.db"
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres: dsn is required")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.SeedCategories(ctx, defaultCategories()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   {{serial}},
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS names (
	id           {{serial}},
	name         TEXT NOT NULL,
	gender       TEXT NOT NULL CHECK (gender IN ('girl', 'boy', 'unisex')),
	origin       TEXT NOT NULL DEFAULT '',
	meaning      TEXT NOT NULL DEFAULT '',
	popularity   INTEGER NOT NULL CHECK (popularity BETWEEN 1 AND 100),
	length       TEXT NOT NULL CHECK (length IN ('short', 'medium', 'long')),
	first_letter TEXT NOT NULL,
	updated_at   BIGINT NOT NULL,
	UNIQUE (name, gender)
);

CREATE INDEX IF NOT EXISTS idx_names_first_letter ON names(first_letter);

CREATE TABLE IF NOT EXISTS name_categories (
	name_id     BIGINT NOT NULL REFERENCES names(id) ON DELETE CASCADE,
	category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (name_id, category_id)
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	gender      TEXT NOT NULL,
	years       TEXT NOT NULL,
	source      TEXT NOT NULL,
	warning     TEXT NOT NULL DEFAULT '',
	names       INTEGER NOT NULL DEFAULT 0,
	inserted    INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0,
	started_at  BIGINT NOT NULL,
	finished_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS source_checks (
	id         {{serial}},
	url        TEXT NOT NULL,
	checked_at BIGINT NOT NULL,
	status     INTEGER NOT NULL,
	error      TEXT
);
`

// createSchema is safe to call multiple times.
func (s *Store) createSchema(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	ddl := strings.ReplaceAll(schema, "{{serial}}", serial)
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
