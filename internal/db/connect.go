// Package db opens the SQL database behind the document store and the audit
// event log. Both drivers accept $n placeholders.
package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type dialect struct {
	sqlName    string
	defaultDSN string
	schema     []string
}

var dialects = map[Driver]dialect{
	DriverSQLite: {
		sqlName:    "sqlite",
		defaultDSN: "file:assessment.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS event_log_key ON event_log (key, seq)`,
		},
	},
	DriverPostgres: {
		sqlName:    "pgx",
		defaultDSN: "postgres://localhost:5432/assessment?sslmode=disable",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at BIGINT NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS event_log_key ON event_log (key, seq)`,
		},
	},
}

// Open connects with driver, falling back to a local default DSN, and
// creates the documents and event_log tables when missing.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.Errorf("unsupported driver: %s", driver)
	}
	if dsn == "" {
		dsn = d.defaultDSN
	}

	dbh, err := sql.Open(d.sqlName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}
	if err := dbh.PingContext(ctx); err != nil {
		_ = dbh.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}
	for _, stmt := range d.schema {
		if _, err := dbh.ExecContext(ctx, stmt); err != nil {
			_ = dbh.Close()
			return nil, errors.Wrap(err, "ensure schema")
		}
	}
	return dbh, nil
}
