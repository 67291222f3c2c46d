package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: InvoiceRepository implements domain.InvoiceRepository.
var _ domain.InvoiceRepository = (*InvoiceRepository)(nil)

// InvoiceRepository implements domain.InvoiceRepository using SQLite.
type InvoiceRepository struct {
	table[domain.Invoice]
}

func newInvoiceRepository(q queryer) *InvoiceRepository {
	return &InvoiceRepository{table[domain.Invoice]{
		q:      q,
		name:   "invoices",
		entity: "invoice",
		columns: `id, room_id, month, year, old_electricity, new_electricity, old_water, new_water,
			service_fee, total_amount, status, payment_proof_ref, created_at, updated_at, deleted_at`,
		order: "created_at DESC, rowid DESC",
		scan:  scanInvoice,
	}}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv domain.Invoice) error {
	m := inv.Readings
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO invoices (id, room_id, month, year, old_electricity, new_electricity, old_water, new_water,
			service_fee, total_amount, status, payment_proof_ref, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.RoomID, inv.Month, inv.Year,
		m.OldElectricity, m.NewElectricity, m.OldWater, m.NewWater,
		inv.ServiceFee, inv.TotalAmount, string(inv.Status), inv.PaymentProofRef,
		formatTime(inv.CreatedAt), formatTime(inv.UpdatedAt),
	)
	if err != nil {
		return storageErr("inserting invoice", err)
	}
	return nil
}

// Update writes status and payment proof. Readings and totals are fixed at
// creation.
func (r *InvoiceRepository) Update(ctx context.Context, inv domain.Invoice) error {
	return r.exec(ctx, "updating invoice", inv.ID,
		`UPDATE invoices SET status = ?, payment_proof_ref = ?, updated_at = ? WHERE id = ?`,
		string(inv.Status), inv.PaymentProofRef, formatTime(time.Now()), inv.ID,
	)
}

func (r *InvoiceRepository) Find(ctx context.Context, scope domain.Scope) ([]domain.Invoice, error) {
	if scope.Unrestricted() {
		return r.List(ctx, domain.ViewActive)
	}
	return r.where(ctx,
		`deleted_at IS NULL AND room_id IN (
			SELECT room_id FROM contracts WHERE user_id = ? AND deleted_at IS NULL)`,
		scope.TenantID)
}

func (r *InvoiceRepository) LatestReadings(ctx context.Context, roomID string) (domain.LatestReadings, error) {
	var out domain.LatestReadings
	err := r.q.QueryRowContext(ctx,
		`SELECT new_electricity, new_water FROM invoices
		 WHERE room_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, roomID,
	).Scan(&out.Electricity, &out.Water)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LatestReadings{}, nil
		}
		return domain.LatestReadings{}, storageErr("reading latest meter readings", err)
	}
	return out, nil
}

func (r *InvoiceRepository) Unpaid(ctx context.Context) ([]domain.Invoice, error) {
	return r.where(ctx, "deleted_at IS NULL AND status = ?", string(domain.InvoiceUnpaid))
}

func scanInvoice(s scanner) (domain.Invoice, error) {
	var inv domain.Invoice
	var status, createdAt, updatedAt string
	var deletedAt sql.NullString
	m := &inv.Readings

	err := s.Scan(&inv.ID, &inv.RoomID, &inv.Month, &inv.Year,
		&m.OldElectricity, &m.NewElectricity, &m.OldWater, &m.NewWater,
		&inv.ServiceFee, &inv.TotalAmount, &status, &inv.PaymentProofRef,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return domain.Invoice{}, err
	}

	inv.Status = domain.InvoiceStatus(status)
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	inv.DeletedAt = parseNullableTime(deletedAt)
	return inv, nil
}
