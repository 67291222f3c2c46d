package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// table implements domain.Recoverable for one soft-deletable table.
type table[T any] struct {
	q       queryer
	name    string // SQL table
	entity  string // name used in errors
	columns string
	order   string
	scan    func(scanner) (T, error)
}

func (t table[T]) selectFrom() string {
	return "SELECT " + t.columns + " FROM " + t.name
}

func (t table[T]) Get(ctx context.Context, id string, view domain.View) (T, error) {
	row := t.q.QueryRowContext(ctx,
		t.selectFrom()+" WHERE id = ? AND "+viewClause(view), id)
	v, err := t.scan(row)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, &domain.NotFoundError{Entity: t.entity, ID: id, Trash: view == domain.ViewTrash}
		}
		return zero, storageErr("reading "+t.entity, err)
	}
	return v, nil
}

func (t table[T]) List(ctx context.Context, view domain.View) ([]T, error) {
	return t.where(ctx, viewClause(view))
}

// where runs a SELECT over the table with the given condition.
func (t table[T]) where(ctx context.Context, cond string, args ...any) ([]T, error) {
	query := t.selectFrom() + " WHERE " + cond + " ORDER BY " + t.order
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("listing "+t.entity, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", t.entity, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listing "+t.entity, err)
	}
	return out, nil
}

func (t table[T]) SetDeleted(ctx context.Context, id string, at *time.Time) error {
	return t.exec(ctx, "updating "+t.entity, id,
		"UPDATE "+t.name+" SET deleted_at = ?, updated_at = ? WHERE id = ?",
		nullableTime(at), formatTime(time.Now()), id)
}

func (t table[T]) Delete(ctx context.Context, id string) error {
	return t.exec(ctx, "deleting "+t.entity, id,
		"DELETE FROM "+t.name+" WHERE id = ?", id)
}

// exec runs a single-row write and reports NotFound when no row matched.
func (t table[T]) exec(ctx context.Context, op, id, query string, args ...any) error {
	result, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: t.entity, ID: id}
	}
	return nil
}

func (t table[T]) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found int
	err := t.q.QueryRowContext(ctx, "SELECT EXISTS("+query+")", args...).Scan(&found)
	if err != nil {
		return false, storageErr("checking "+t.entity, err)
	}
	return found == 1, nil
}
