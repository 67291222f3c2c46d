package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// sqlitePragmas apply to the single shared connection.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// OpenDB opens the rental database with a span per statement and pool
// metrics. The store and the job queue share the returned handle.
func OpenDB(path string) (*sql.DB, error) {
	attrs := otelsql.WithAttributes(semconv.DBSystemSqlite)

	db, err := otelsql.Open("sqlite", path, attrs)
	if err != nil {
		return nil, fmt.Errorf("opening rental database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := configure(db, attrs); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sql.DB, attrs otelsql.Option) error {
	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	if _, err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		return fmt.Errorf("registering db stats metrics: %w", err)
	}
	return nil
}
