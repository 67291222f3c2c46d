package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: UserRepository implements domain.UserRepository.
var _ domain.UserRepository = (*UserRepository)(nil)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	table[domain.User]
}

func newUserRepository(q queryer) *UserRepository {
	return &UserRepository{table[domain.User]{
		q:      q,
		name:   "users",
		entity: "user",
		columns: `id, email, full_name, phone, identity_card, role, password_hash, face_descriptor,
			created_at, updated_at, deleted_at`,
		order: "created_at DESC, rowid DESC",
		scan:  scanUser,
	}}
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, phone, identity_card, role, password_hash, face_descriptor, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, normalizeEmail(u.Email), u.FullName, u.Phone, u.IdentityCard, string(u.Role), u.PasswordHash,
		u.FaceDescriptor, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return emailConflict(u.Email)
		}
		return storageErr("inserting user", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u domain.User) error {
	return r.exec(ctx, "updating user", u.ID,
		`UPDATE users SET full_name = ?, phone = ?, identity_card = ?, role = ?, password_hash = ?,
			face_descriptor = ?, updated_at = ?
		 WHERE id = ?`,
		u.FullName, u.Phone, u.IdentityCard, string(u.Role), u.PasswordHash, u.FaceDescriptor,
		formatTime(time.Now()), u.ID,
	)
}

func (r *UserRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM users WHERE email = ? AND id <> ? AND deleted_at IS NULL`,
		normalizeEmail(email), exceptID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		r.selectFrom()+` WHERE email = ? AND deleted_at IS NULL`, normalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &domain.NotFoundError{Entity: "user", ID: email}
		}
		return domain.User{}, storageErr("reading user", err)
	}
	return u, nil
}

func (r *UserRepository) WithFaces(ctx context.Context) ([]domain.User, error) {
	return r.where(ctx, "deleted_at IS NULL AND face_descriptor IS NOT NULL AND length(face_descriptor) > 0")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailConflict(email string) error {
	return &domain.ConflictError{Reason: fmt.Sprintf("email %q is already registered", email)}
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	var role, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.IdentityCard, &role, &u.PasswordHash,
		&u.FaceDescriptor, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	u.DeletedAt = parseNullableTime(deletedAt)
	return u, nil
}
