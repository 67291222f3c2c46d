package domain

import "time"

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid   InvoiceStatus = "PAID"
	InvoiceUnpaid InvoiceStatus = "UNPAID"
)

// Invoice is a monthly bill for a room.
type Invoice struct {
	ID              string
	RoomID          string
	Month           int
	Year            int
	Readings        MeterReadings
	ServiceFee      int64
	TotalAmount     int64
	Status          InvoiceStatus
	PaymentProofRef string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Deleted reports whether the invoice is in the trash.
func (i Invoice) Deleted() bool { return i.DeletedAt != nil }

// InvoicePatch holds optional invoice updates. Status changes are validated
// against InvoiceLifecycle.
type InvoicePatch struct {
	Status          *InvoiceStatus
	PaymentProofRef *string
}

// LatestReadings is the most recent closing meter state of a room.
type LatestReadings struct {
	Electricity int64
	Water       int64
}

// BillingNotice pairs an invoice with the tenant who should hear about it.
type BillingNotice struct {
	Kind       NoticeKind
	Invoice    Invoice
	RoomNumber string
	Recipient  User
}

// NoticeKind distinguishes billing messages.
type NoticeKind string

const (
	NoticeIssued   NoticeKind = "invoice.issued"
	NoticeReminder NoticeKind = "invoice.reminder"
)

// InvoiceLine is an invoice labelled with its room and branch for reports.
type InvoiceLine struct {
	Invoice
	RoomNumber string
	BranchName string
}
