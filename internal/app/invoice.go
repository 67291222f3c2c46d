package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Billing holds the price list and the account invoices are paid into.
type Billing struct {
	Tariff domain.Tariff
	Payee  domain.PayeeAccount
}

// DefaultBilling uses the built-in tariff and payee.
var DefaultBilling = Billing{Tariff: domain.DefaultTariff, Payee: domain.DefaultPayee}

// InvoiceInput holds the fields of a new invoice. A nil ServiceFee uses the
// tariff default.
type InvoiceInput struct {
	RoomID     string
	Month      int
	Year       int
	Readings   domain.MeterReadings
	ServiceFee *int64
}

// InvoiceService computes monthly bills and serves them to the principals
// allowed to see them.
type InvoiceService struct {
	*Trash[domain.Invoice]
	store     domain.Store
	validator domain.TransitionValidator
	notifier  domain.Notifier
	scope     ScopePolicy
	billing   Billing
	logger    *zap.Logger
}

// NewInvoiceService creates a service with the given adapters. notifier may
// be nil.
func NewInvoiceService(store domain.Store, validator domain.TransitionValidator, notifier domain.Notifier, scope ScopePolicy, billing Billing, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		Trash: NewTrash(store,
			func(r domain.Repositories) domain.Recoverable[domain.Invoice] { return r.Invoices() },
			TrashHooks[domain.Invoice]{}),
		store:     store,
		validator: validator,
		notifier:  notifier,
		scope:     scope,
		billing:   billing,
		logger:    logger,
	}
}

// Create prices a month of usage for a live room and stores it UNPAID. The
// room's active tenant is notified after commit; delivery problems are
// logged and never returned.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (domain.Invoice, error) {
	if in.Month < 1 || in.Month > 12 {
		return domain.Invoice{}, &domain.InvalidInputError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if in.Year < 1 {
		return domain.Invoice{}, &domain.InvalidInputError{Field: "year", Reason: "must be positive"}
	}
	if err := in.Readings.Validate(); err != nil {
		return domain.Invoice{}, err
	}
	if in.ServiceFee != nil && *in.ServiceFee < 0 {
		return domain.Invoice{}, &domain.InvalidInputError{Field: "serviceFee", Reason: "must not be negative"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("generating invoice id: %w", err)
	}

	var inv domain.Invoice
	var room domain.Room
	err = s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		room, err = repos.Rooms().Get(ctx, in.RoomID, domain.ViewActive)
		if err != nil {
			return err
		}

		bill, err := s.billing.Tariff.Compute(room.Price, in.Readings, in.ServiceFee)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		inv = domain.Invoice{
			ID:          id,
			RoomID:      room.ID,
			Month:       in.Month,
			Year:        in.Year,
			Readings:    in.Readings,
			ServiceFee:  bill.ServiceFee,
			TotalAmount: bill.Total,
			Status:      domain.InvoiceUnpaid,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return repos.Invoices().Create(ctx, inv)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice.id", inv.ID),
		zap.String("room.id", inv.RoomID),
		zap.Int64("invoice.total", inv.TotalAmount),
	)
	s.notify(ctx, domain.NoticeIssued, inv, room)
	return inv, nil
}

func (s *InvoiceService) notify(ctx context.Context, kind domain.NoticeKind, inv domain.Invoice, room domain.Room) {
	if s.notifier == nil {
		return
	}

	tenant, err := s.activeTenant(ctx, s.store, room.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("resolving invoice recipient", zap.String("invoice.id", inv.ID), zap.Error(err))
		}
		return
	}

	notice := domain.BillingNotice{Kind: kind, Invoice: inv, RoomNumber: room.RoomNumber, Recipient: tenant}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		s.logger.Warn("notifying tenant",
			zap.String("invoice.id", inv.ID),
			zap.String("user.id", tenant.ID),
			zap.Error(err),
		)
	}
}

func (s *InvoiceService) activeTenant(ctx context.Context, repos domain.Repositories, roomID string) (domain.User, error) {
	c, err := repos.Contracts().ActiveForRoom(ctx, roomID)
	if err != nil {
		return domain.User{}, err
	}
	return repos.Users().Get(ctx, c.UserID, domain.ViewActive)
}

// Get returns a live invoice if the principal holds or held a contract on
// its room.
func (s *InvoiceService) Get(ctx context.Context, id string, p domain.Principal) (domain.Invoice, error) {
	inv, err := s.store.Invoices().Get(ctx, id, domain.ViewActive)
	if err != nil {
		return domain.Invoice{}, err
	}

	scope := s.scope(p)
	if scope.Unrestricted() {
		return inv, nil
	}
	held, err := s.store.Contracts().HeldBy(ctx, scope.TenantID, inv.RoomID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !held {
		return domain.Invoice{}, &domain.ForbiddenError{Entity: "invoice", ID: id}
	}
	return inv, nil
}

// List returns the live invoices visible to the principal.
func (s *InvoiceService) List(ctx context.Context, p domain.Principal) ([]domain.Invoice, error) {
	return s.store.Invoices().Find(ctx, s.scope(p))
}

// PaymentReference returns the transfer QR link for inv.
func (s *InvoiceService) PaymentReference(inv domain.Invoice) string {
	return domain.PaymentReference(s.billing.Payee, inv)
}

// Update changes payment status through the invoice lifecycle and attaches
// a payment proof.
func (s *InvoiceService) Update(ctx context.Context, id string, patch domain.InvoicePatch) (domain.Invoice, error) {
	if patch.Status != nil && *patch.Status != domain.InvoicePaid && *patch.Status != domain.InvoiceUnpaid {
		return domain.Invoice{}, &domain.InvalidInputError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *patch.Status)}
	}

	var inv domain.Invoice
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		inv, err = repos.Invoices().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}

		if patch.Status != nil && *patch.Status != inv.Status {
			event := domain.EventPay
			if *patch.Status == domain.InvoiceUnpaid {
				event = domain.EventReopen
			}
			next, err := s.validator.Apply(ctx, domain.InvoiceLifecycle, string(inv.Status), event)
			if err != nil {
				return err
			}
			inv.Status = domain.InvoiceStatus(next)
		}
		if patch.PaymentProofRef != nil {
			inv.PaymentProofRef = *patch.PaymentProofRef
		}
		return repos.Invoices().Update(ctx, inv)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

// LatestReadings returns the closing meter values of the room's most recent
// invoice, or zeros when it has none.
func (s *InvoiceService) LatestReadings(ctx context.Context, roomID string) (domain.LatestReadings, error) {
	if _, err := s.store.Rooms().Get(ctx, roomID, domain.ViewActive); err != nil {
		return domain.LatestReadings{}, err
	}
	return s.store.Invoices().LatestReadings(ctx, roomID)
}

// DueReminders pairs every unpaid invoice with its room's active tenant.
// Invoices whose room has no active tenant are skipped.
func (s *InvoiceService) DueReminders(ctx context.Context) ([]domain.BillingNotice, error) {
	invoices, err := s.store.Invoices().Unpaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unpaid invoices: %w", err)
	}

	notices := make([]domain.BillingNotice, 0, len(invoices))
	for _, inv := range invoices {
		room, err := s.store.Rooms().Get(ctx, inv.RoomID, domain.ViewAny)
		if err != nil {
			return nil, err
		}
		tenant, err := s.activeTenant(ctx, s.store, inv.RoomID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		notices = append(notices, domain.BillingNotice{
			Kind:       domain.NoticeReminder,
			Invoice:    inv,
			RoomNumber: room.RoomNumber,
			Recipient:  tenant,
		})
	}
	return notices, nil
}

// Ledger returns the visible invoices labelled with room and branch names.
// Rooms and branches in the trash still label their invoices.
func (s *InvoiceService) Ledger(ctx context.Context, p domain.Principal) ([]domain.InvoiceLine, error) {
	invoices, err := s.List(ctx, p)
	if err != nil {
		return nil, err
	}

	rooms := make(map[string]domain.Room)
	branches := make(map[string]string)
	lines := make([]domain.InvoiceLine, 0, len(invoices))
	for _, inv := range invoices {
		room, ok := rooms[inv.RoomID]
		if !ok {
			if room, err = s.store.Rooms().Get(ctx, inv.RoomID, domain.ViewAny); err != nil {
				return nil, err
			}
			rooms[inv.RoomID] = room
		}
		name, ok := branches[room.BranchID]
		if !ok {
			b, err := s.store.Branches().Get(ctx, room.BranchID, domain.ViewAny)
			if err != nil {
				return nil, err
			}
			name = b.Name
			branches[room.BranchID] = name
		}
		lines = append(lines, domain.InvoiceLine{Invoice: inv, RoomNumber: room.RoomNumber, BranchName: name})
	}
	return lines, nil
}
