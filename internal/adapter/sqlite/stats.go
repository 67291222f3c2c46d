package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time checks.
var (
	_ domain.AccessLogRepository = (*AccessLogRepository)(nil)
	_ domain.StatsRepository     = (*StatsRepository)(nil)
)

// AccessLogRepository implements domain.AccessLogRepository using SQLite.
type AccessLogRepository struct {
	q queryer
}

func (r *AccessLogRepository) Create(ctx context.Context, l domain.AccessLog) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO access_logs (id, user_id, method, status, note, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, nullableString(l.UserID), l.Method, l.Status, l.Note, formatTime(l.CreatedAt),
	)
	if err != nil {
		return storageErr("inserting access log", err)
	}
	return nil
}

func (r *AccessLogRepository) List(ctx context.Context, limit int) ([]domain.AccessLog, error) {
	query := `SELECT id, COALESCE(user_id, ''), method, status, note, created_at
		FROM access_logs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("listing access logs", err)
	}
	defer rows.Close()

	logs := make([]domain.AccessLog, 0)
	for rows.Next() {
		var l domain.AccessLog
		var createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Method, &l.Status, &l.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning access log row: %w", err)
		}
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// StatsRepository implements domain.StatsRepository using SQLite.
type StatsRepository struct {
	q queryer
}

func (r *StatsRepository) Counts(ctx context.Context) (domain.Counts, error) {
	var c domain.Counts
	err := r.q.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM branches WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM rooms WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM rooms WHERE deleted_at IS NULL AND status = ?),
		(SELECT COUNT(*) FROM rooms WHERE deleted_at IS NULL AND status = ?),
		(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND role = ?)`,
		string(domain.RoomAvailable), string(domain.RoomOccupied), string(domain.RoleTenant),
	).Scan(&c.Branches, &c.Rooms, &c.AvailableRooms, &c.RentedRooms, &c.Tenants)
	if err != nil {
		return domain.Counts{}, storageErr("counting entities", err)
	}
	return c, nil
}

func (r *StatsRepository) InvoiceSum(ctx context.Context, status domain.InvoiceStatus, year, month int) (int64, error) {
	var sum int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM invoices
		 WHERE deleted_at IS NULL AND status = ? AND year = ? AND month = ?`,
		string(status), year, month,
	).Scan(&sum)
	if err != nil {
		return 0, storageErr("summing invoices", err)
	}
	return sum, nil
}
