package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: RoomRepository implements domain.RoomRepository.
var _ domain.RoomRepository = (*RoomRepository)(nil)

// RoomRepository implements domain.RoomRepository using SQLite.
type RoomRepository struct {
	table[domain.Room]
}

func newRoomRepository(q queryer) *RoomRepository {
	return &RoomRepository{table[domain.Room]{
		q:       q,
		name:    "rooms",
		entity:  "room",
		columns: `id, branch_id, room_number, price, area, status, image_ref, deleted_by_branch, created_at, updated_at, deleted_at`,
		order:   "room_number, rowid",
		scan:    scanRoom,
	}}
}

func (r *RoomRepository) Create(ctx context.Context, room domain.Room) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO rooms (id, branch_id, room_number, price, area, status, image_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.BranchID, room.RoomNumber, room.Price, room.Area, string(room.Status), room.ImageRef,
		formatTime(room.CreatedAt), formatTime(room.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return roomNumberConflict(room.RoomNumber)
		}
		return storageErr("inserting room", err)
	}
	return nil
}

// Update writes the plain fields of a room. Status is never written here.
func (r *RoomRepository) Update(ctx context.Context, room domain.Room) error {
	return r.exec(ctx, "updating room", room.ID,
		`UPDATE rooms SET branch_id = ?, room_number = ?, price = ?, area = ?, image_ref = ?, updated_at = ?
		 WHERE id = ?`,
		room.BranchID, room.RoomNumber, room.Price, room.Area, room.ImageRef, formatTime(time.Now()), room.ID,
	)
}

func (r *RoomRepository) Find(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	cond := "deleted_at IS NULL"
	var args []any

	if filter.BranchID != "" {
		cond += " AND branch_id = ?"
		args = append(args, filter.BranchID)
	}
	if filter.Status != nil {
		cond += " AND status = ?"
		args = append(args, string(*filter.Status))
	}

	return r.where(ctx, cond, args...)
}

func (r *RoomRepository) ListByBranch(ctx context.Context, branchID string, view domain.View) ([]domain.Room, error) {
	return r.where(ctx, "branch_id = ? AND "+viewClause(view), branchID)
}

func (r *RoomRepository) NumberTaken(ctx context.Context, branchID, roomNumber, exceptID string) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM rooms WHERE branch_id = ? AND room_number = ? AND id <> ? AND deleted_at IS NULL`,
		branchID, roomNumber, exceptID)
}

func (r *RoomRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.RoomStatus) (bool, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now()), id, string(from),
	)
	if err != nil {
		return false, storageErr("updating room status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *RoomRepository) SetDeletedByBranch(ctx context.Context, id, branchID string) error {
	return r.exec(ctx, "marking room cascade", id,
		`UPDATE rooms SET deleted_by_branch = ? WHERE id = ?`, nullableString(branchID), id)
}

func (r *RoomRepository) Referenced(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM contracts WHERE room_id = ? UNION ALL SELECT 1 FROM invoices WHERE room_id = ?`, id, id)
}

func roomNumberConflict(number string) error {
	return &domain.ConflictError{Reason: fmt.Sprintf("room number %q is already used in this branch", number)}
}

func scanRoom(s scanner) (domain.Room, error) {
	var room domain.Room
	var status, createdAt, updatedAt string
	var deletedBy, deletedAt sql.NullString

	err := s.Scan(&room.ID, &room.BranchID, &room.RoomNumber, &room.Price, &room.Area, &status,
		&room.ImageRef, &deletedBy, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return domain.Room{}, err
	}

	room.Status = domain.RoomStatus(status)
	room.DeletedByBranch = deletedBy.String
	room.CreatedAt = parseTime(createdAt)
	room.UpdatedAt = parseTime(updatedAt)
	room.DeletedAt = parseNullableTime(deletedAt)
	return room, nil
}
