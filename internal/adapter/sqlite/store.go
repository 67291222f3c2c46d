package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/rentiq/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time check: Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store on a single SQLite database.
type Store struct {
	repositories
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes transactions and keeps ":memory:" databases
	// shared across callers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

// Wrap returns a store over db without touching the schema.
func Wrap(db *sql.DB) *Store {
	return &Store{repositories: repositories{q: db}, db: db}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Atomically runs fn in a transaction. Any error from fn rolls back.
func (s *Store) Atomically(ctx context.Context, fn func(domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("beginning transaction", err)
	}

	if err := fn(repositories{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("committing transaction", err)
	}
	return nil
}

// repositories binds every repository to one queryer.
type repositories struct {
	q queryer
}

func (r repositories) Branches() domain.BranchRepository   { return newBranchRepository(r.q) }
func (r repositories) Rooms() domain.RoomRepository         { return newRoomRepository(r.q) }
func (r repositories) Contracts() domain.ContractRepository { return newContractRepository(r.q) }
func (r repositories) Invoices() domain.InvoiceRepository   { return newInvoiceRepository(r.q) }
func (r repositories) Users() domain.UserRepository         { return newUserRepository(r.q) }
func (r repositories) AccessLogs() domain.AccessLogRepository {
	return &AccessLogRepository{q: r.q}
}
func (r repositories) Stats() domain.StatsRepository { return &StatsRepository{q: r.q} }

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func viewClause(v domain.View) string {
	switch v {
	case domain.ViewActive:
		return "deleted_at IS NULL"
	case domain.ViewTrash:
		return "deleted_at IS NOT NULL"
	default:
		return "1 = 1"
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// storageErr classifies a driver error. Lock contention and deadlines are
// transient; constraint failures are conflicts.
func storageErr(op string, err error) error {
	switch {
	case isBusy(err):
		return &domain.TransientError{Err: fmt.Errorf("%s: %w", op, err)}
	case isUniqueViolation(err):
		return &domain.ConflictError{Reason: op + ": duplicate value"}
	case isForeignKeyViolation(err):
		return &domain.ConflictError{Reason: op + ": still referenced by other records"}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isBusy(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
