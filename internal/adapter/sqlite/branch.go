package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: BranchRepository implements domain.BranchRepository.
var _ domain.BranchRepository = (*BranchRepository)(nil)

// BranchRepository implements domain.BranchRepository using SQLite.
type BranchRepository struct {
	table[domain.Branch]
}

func newBranchRepository(q queryer) *BranchRepository {
	return &BranchRepository{table[domain.Branch]{
		q:      q,
		name:   "branches",
		entity: "branch",
		columns: `id, name, address, manager_name, image_ref, created_at, updated_at, deleted_at,
			(SELECT COUNT(*) FROM rooms WHERE rooms.branch_id = branches.id AND rooms.deleted_at IS NULL)`,
		order: "created_at DESC, rowid DESC",
		scan:  scanBranch,
	}}
}

func (r *BranchRepository) Create(ctx context.Context, b domain.Branch) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO branches (id, name, address, manager_name, image_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Address, b.ManagerName, b.ImageRef,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return storageErr("inserting branch", err)
	}
	return nil
}

func (r *BranchRepository) Update(ctx context.Context, b domain.Branch) error {
	return r.exec(ctx, "updating branch", b.ID,
		`UPDATE branches SET name = ?, address = ?, manager_name = ?, image_ref = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name, b.Address, b.ManagerName, b.ImageRef, formatTime(time.Now()), b.ID,
	)
}

func scanBranch(s scanner) (domain.Branch, error) {
	var b domain.Branch
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	err := s.Scan(&b.ID, &b.Name, &b.Address, &b.ManagerName, &b.ImageRef,
		&createdAt, &updatedAt, &deletedAt, &b.RoomCount)
	if err != nil {
		return domain.Branch{}, err
	}

	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	b.DeletedAt = parseNullableTime(deletedAt)
	return b, nil
}
