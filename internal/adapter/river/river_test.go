package river_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/rentiq/internal/adapter/river"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// chanMailer forwards every sent message to a channel.
type chanMailer struct {
	sent chan domain.Message
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan domain.Message, 16)}
}

func (m *chanMailer) Send(_ context.Context, msg domain.Message) error {
	m.sent <- msg
	return nil
}

type staticReminders struct {
	notices []domain.BillingNotice
	err     error
}

func (s staticReminders) DueReminders(context.Context) ([]domain.BillingNotice, error) {
	return s.notices, s.err
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

func startClient(t *testing.T, opts riveradapter.Options) *riveradapter.Client {
	t.Helper()
	ctx := context.Background()

	client, err := riveradapter.Setup(ctx, setupTestDB(t), opts)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}
	if err := client.Start(ctx); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})
	return client
}

func waitForMessage(t *testing.T, m *chanMailer) domain.Message {
	t.Helper()
	select {
	case msg := <-m.sent:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return domain.Message{}
	}
}

func notice(kind domain.NoticeKind, invoiceID, email string) domain.BillingNotice {
	return domain.BillingNotice{
		Kind:       kind,
		Invoice:    domain.Invoice{ID: invoiceID, Month: 3, Year: 2025, TotalAmount: 3900000, Status: domain.InvoiceUnpaid},
		RoomNumber: "101",
		Recipient:  domain.User{ID: "u-1", Email: email, FullName: "Tran Van A"},
	}
}

// --- Notifier ---

func TestNotifier_Notify_DeliversMessage(t *testing.T) {
	mailer := newChanMailer()
	client := startClient(t, riveradapter.Options{
		Mailer:   mailer,
		Payee:    domain.DefaultPayee,
		Language: language.English,
		Logger:   zap.NewNop(),
	})

	n := riveradapter.NewNotifier(client)
	if err := n.Notify(context.Background(), notice(domain.NoticeIssued, "inv-1", "a@example.com")); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	msg := waitForMessage(t, mailer)
	if msg.To != "a@example.com" {
		t.Errorf("To = %q, want %q", msg.To, "a@example.com")
	}
	if msg.Subject != "New invoice 03/2025 for room 101" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"Tran Van A", "3,900,000", "PAY-INV-inv-1", "img.vietqr.io"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q, got: %s", want, msg.Body)
		}
	}
}

func TestNotifier_Notify_EnqueuesJobKind(t *testing.T) {
	client := startClient(t, riveradapter.Options{Mailer: newChanMailer(), Language: language.English})
	ctx := context.Background()

	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	if err := riveradapter.NewNotifier(client).Notify(ctx, notice(domain.NoticeIssued, "inv-9", "b@example.com")); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	select {
	case event := <-subscribeChan:
		if event.Job.Kind != "billing.notification" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "billing.notification")
		}
		args := string(event.Job.EncodedArgs)
		for _, want := range []string{`"invoice_id":"inv-9"`, `"room_number":"101"`, `"total":3900000`} {
			if !strings.Contains(args, want) {
				t.Errorf("encoded args missing %s, got: %s", want, args)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

// --- Reminder sweep ---

func TestReminderSweep_EnqueuesNotifications(t *testing.T) {
	mailer := newChanMailer()
	client := startClient(t, riveradapter.Options{
		Mailer:   mailer,
		Language: language.English,
		Reminders: staticReminders{notices: []domain.BillingNotice{
			notice(domain.NoticeReminder, "inv-1", "a@example.com"),
			notice(domain.NoticeReminder, "inv-2", "b@example.com"),
		}},
		ReminderSchedule: "0 0 1 1 *",
	})

	if _, err := client.Insert(context.Background(), riveradapter.ReminderSweepArgs{}, nil); err != nil {
		t.Fatalf("inserting sweep: %v", err)
	}

	got := map[string]bool{}
	for range 2 {
		msg := waitForMessage(t, mailer)
		if !strings.HasPrefix(msg.Subject, "Payment reminder:") {
			t.Errorf("Subject = %q, want reminder", msg.Subject)
		}
		got[msg.To] = true
	}
	if !got["a@example.com"] || !got["b@example.com"] {
		t.Errorf("recipients = %v", got)
	}
}

func TestSetup_InvalidSchedule(t *testing.T) {
	_, err := riveradapter.Setup(context.Background(), setupTestDB(t), riveradapter.Options{
		Mailer:           newChanMailer(),
		Reminders:        staticReminders{err: errors.New("unused")},
		ReminderSchedule: "every tuesday",
	})
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestReminderFunc_Forwards(t *testing.T) {
	want := []domain.BillingNotice{notice(domain.NoticeReminder, "inv-9", "c@example.com")}
	var src riveradapter.ReminderSource = riveradapter.ReminderFunc(func(context.Context) ([]domain.BillingNotice, error) {
		return want, nil
	})

	got, err := src.DueReminders(context.Background())
	if err != nil {
		t.Fatalf("DueReminders failed: %v", err)
	}
	if len(got) != 1 || got[0].Invoice.ID != "inv-9" {
		t.Errorf("got %+v, want the forwarded notice", got)
	}
}

// --- Rendering ---

func TestNotificationWorker_Render(t *testing.T) {
	w := riveradapter.NewNotificationWorker(newChanMailer(), domain.DefaultPayee, language.English, zap.NewNop())

	msg := w.Render(riveradapter.NotificationArgs{
		Notice:     string(domain.NoticeReminder),
		InvoiceID:  "inv-5",
		RoomNumber: "202",
		Month:      11,
		Year:       2024,
		Total:      1250000,
		Email:      "c@example.com",
		FullName:   "Le Thi B",
	})

	if msg.Subject != "Payment reminder: invoice 11/2024 for room 202" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "1,250,000 VND") {
		t.Errorf("body missing formatted amount: %s", msg.Body)
	}
}

func TestNotificationArgs_EncodesNoticeKind(t *testing.T) {
	args := riveradapter.NotificationArgs{Notice: string(domain.NoticeReminder), InvoiceID: "inv-9"}

	if args.Kind() != "billing.notification" {
		t.Errorf("Kind() = %q, want %q", args.Kind(), "billing.notification")
	}

	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["kind"] != string(domain.NoticeReminder) {
		t.Errorf("payload kind = %v, want %q", decoded["kind"], domain.NoticeReminder)
	}
}
