package river

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// NotificationWorker renders billing notices and hands them to a Mailer.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationArgs]

	mailer  domain.Mailer
	payee   domain.PayeeAccount
	printer *message.Printer
	logger  *zap.Logger
}

// NewNotificationWorker creates a worker that formats amounts for lang.
func NewNotificationWorker(mailer domain.Mailer, payee domain.PayeeAccount, lang language.Tag, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		mailer:  mailer,
		payee:   payee,
		printer: message.NewPrinter(lang),
		logger:  logger,
	}
}

// Work delivers a single notification. Recipients without an email address
// are skipped.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationArgs]) error {
	args := job.Args
	if args.Email == "" {
		w.logger.Warn("skipping notification without recipient email",
			zap.String("invoice_id", args.InvoiceID),
			zap.String("user_id", args.UserID),
		)
		return nil
	}

	msg := w.Render(args)
	if err := w.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending %s for invoice %s: %w", args.Notice, args.InvoiceID, err)
	}

	w.logger.Info("notification delivered",
		zap.String("kind", args.Notice),
		zap.String("invoice_id", args.InvoiceID),
		zap.String("user_id", args.UserID),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}

// Render builds the email for a notification.
func (w *NotificationWorker) Render(args NotificationArgs) domain.Message {
	period := fmt.Sprintf("%02d/%d", args.Month, args.Year)

	var subject string
	switch domain.NoticeKind(args.Notice) {
	case domain.NoticeReminder:
		subject = fmt.Sprintf("Payment reminder: invoice %s for room %s", period, args.RoomNumber)
	default:
		subject = fmt.Sprintf("New invoice %s for room %s", period, args.RoomNumber)
	}

	payURL := domain.PaymentReference(w.payee, domain.Invoice{ID: args.InvoiceID, TotalAmount: args.Total})

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", args.FullName)
	b.WriteString(w.printer.Sprintf("Amount due for %s: %d VND\n", period, args.Total))
	fmt.Fprintf(&b, "Payment memo: %s\n", domain.PaymentMemo(args.InvoiceID))
	fmt.Fprintf(&b, "Pay by QR: %s\n", payURL)

	return domain.Message{To: args.Email, Subject: subject, Body: b.String()}
}

// ReminderSweepArgs triggers one pass over unpaid invoices.
type ReminderSweepArgs struct{}

func (ReminderSweepArgs) Kind() string { return "billing.reminder_sweep" }

// ReminderSource lists the reminders currently due.
type ReminderSource interface {
	DueReminders(ctx context.Context) ([]domain.BillingNotice, error)
}

// ReminderFunc adapts a function to ReminderSource.
type ReminderFunc func(ctx context.Context) ([]domain.BillingNotice, error)

func (f ReminderFunc) DueReminders(ctx context.Context) ([]domain.BillingNotice, error) { return f(ctx) }

// ReminderSweepWorker turns every due reminder into a notification job.
type ReminderSweepWorker struct {
	river.WorkerDefaults[ReminderSweepArgs]

	source ReminderSource
	logger *zap.Logger
}

func NewReminderSweepWorker(source ReminderSource, logger *zap.Logger) *ReminderSweepWorker {
	return &ReminderSweepWorker{source: source, logger: logger}
}

func (w *ReminderSweepWorker) Work(ctx context.Context, job *river.Job[ReminderSweepArgs]) error {
	notices, err := w.source.DueReminders(ctx)
	if err != nil {
		return fmt.Errorf("listing due reminders: %w", err)
	}
	if len(notices) == 0 {
		return nil
	}

	params := make([]river.InsertManyParams, 0, len(notices))
	for _, n := range notices {
		params = append(params, river.InsertManyParams{Args: notificationArgs(n)})
	}

	client := river.ClientFromContext[*sql.Tx](ctx)
	if _, err := client.InsertMany(ctx, params); err != nil {
		return fmt.Errorf("enqueuing reminders: %w", err)
	}

	w.logger.Info("reminder sweep enqueued notifications",
		zap.Int("count", len(notices)),
		zap.Int64("job_id", job.ID),
	)
	return nil
}

// Timeout bounds a sweep so a stuck query cannot hold the queue.
func (w *ReminderSweepWorker) Timeout(*river.Job[ReminderSweepArgs]) time.Duration {
	return time.Minute
}
