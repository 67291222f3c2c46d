package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: ContractRepository implements domain.ContractRepository.
var _ domain.ContractRepository = (*ContractRepository)(nil)

// ContractRepository implements domain.ContractRepository using SQLite.
type ContractRepository struct {
	table[domain.Contract]
}

func newContractRepository(q queryer) *ContractRepository {
	return &ContractRepository{table[domain.Contract]{
		q:       q,
		name:    "contracts",
		entity:  "contract",
		columns: `id, room_id, user_id, start_date, end_date, deposit, status, scan_image_ref, created_at, updated_at, deleted_at`,
		order:   "created_at DESC, rowid DESC",
		scan:    scanContract,
	}}
}

func (r *ContractRepository) Create(ctx context.Context, c domain.Contract) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO contracts (id, room_id, user_id, start_date, end_date, deposit, status, scan_image_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RoomID, c.UserID, formatTime(c.StartDate), formatTime(c.EndDate), c.Deposit,
		string(c.Status), c.ScanImageRef, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: "room already has an active contract"}
		}
		return storageErr("inserting contract", err)
	}
	return nil
}

func (r *ContractRepository) Update(ctx context.Context, c domain.Contract) error {
	return r.exec(ctx, "updating contract", c.ID,
		`UPDATE contracts SET start_date = ?, end_date = ?, deposit = ?, status = ?, scan_image_ref = ?, updated_at = ?
		 WHERE id = ?`,
		formatTime(c.StartDate), formatTime(c.EndDate), c.Deposit, string(c.Status), c.ScanImageRef,
		formatTime(time.Now()), c.ID,
	)
}

func (r *ContractRepository) Find(ctx context.Context, scope domain.Scope) ([]domain.Contract, error) {
	if scope.Unrestricted() {
		return r.List(ctx, domain.ViewActive)
	}
	return r.where(ctx, "deleted_at IS NULL AND user_id = ?", scope.TenantID)
}

func (r *ContractRepository) ActiveForRoom(ctx context.Context, roomID string) (domain.Contract, error) {
	row := r.q.QueryRowContext(ctx,
		r.selectFrom()+` WHERE room_id = ? AND status = ? AND deleted_at IS NULL`,
		roomID, string(domain.ContractActive))
	c, err := scanContract(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Contract{}, &domain.NotFoundError{Entity: "active contract for room", ID: roomID}
		}
		return domain.Contract{}, storageErr("reading active contract", err)
	}
	return c, nil
}

func (r *ContractRepository) HeldBy(ctx context.Context, userID, roomID string) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM contracts WHERE user_id = ? AND room_id = ? AND deleted_at IS NULL`,
		userID, roomID)
}

func (r *ContractRepository) CountByUser(ctx context.Context, userID string, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM contracts WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		query += ` AND status = ? AND deleted_at IS NULL`
		args = append(args, string(domain.ContractActive))
	}

	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, storageErr("counting contracts", err)
	}
	return n, nil
}

func scanContract(s scanner) (domain.Contract, error) {
	var c domain.Contract
	var start, end, status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := s.Scan(&c.ID, &c.RoomID, &c.UserID, &start, &end, &c.Deposit, &status,
		&c.ScanImageRef, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return domain.Contract{}, err
	}

	c.StartDate = parseTime(start)
	c.EndDate = parseTime(end)
	c.Status = domain.ContractStatus(status)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	c.DeletedAt = parseNullableTime(deletedAt)
	return c, nil
}
