package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

// NotificationArgs carries a snapshot of the billing notice so the worker
// never needs to query the database.
type NotificationArgs struct {
	Notice     string `json:"kind"`
	InvoiceID  string `json:"invoice_id"`
	RoomNumber string `json:"room_number"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Total      int64  `json:"total"`
	Status     string `json:"status"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationArgs) Kind() string { return "billing.notification" }

// InsertOpts retries delivery a few times before discarding the job.
func (NotificationArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 5}
}

func notificationArgs(n domain.BillingNotice) NotificationArgs {
	return NotificationArgs{
		Notice:     string(n.Kind),
		InvoiceID:  n.Invoice.ID,
		RoomNumber: n.RoomNumber,
		Month:      n.Invoice.Month,
		Year:       n.Invoice.Year,
		Total:      n.Invoice.TotalAmount,
		Status:     string(n.Invoice.Status),
		UserID:     n.Recipient.ID,
		Email:      n.Recipient.Email,
		FullName:   n.Recipient.FullName,
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing River jobs.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Notify enqueues the notice. Delivery happens in NotificationWorker.
func (n *Notifier) Notify(ctx context.Context, notice domain.BillingNotice) error {
	if _, err := n.client.Insert(ctx, notificationArgs(notice), nil); err != nil {
		return &domain.TransientError{Err: fmt.Errorf("enqueuing notification job: %w", err)}
	}
	return nil
}
