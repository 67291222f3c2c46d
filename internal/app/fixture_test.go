package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/rentiq/internal/adapter/fsm"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// --- Fakes ---

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.BillingNotice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.BillingNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) sent() []domain.BillingNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.BillingNotice(nil), n.notices...)
}

// --- Fixture ---

type fixture struct {
	store     *sqlite.Store
	branches  *app.BranchService
	rooms     *app.RoomService
	contracts *app.ContractService
	invoices  *app.InvoiceService
	users     *app.UserService
	notifier  *recordingNotifier
}

var (
	admin = domain.Principal{ID: "admin", Role: domain.RoleAdmin}
	ctx   = context.Background()
)

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, app.PurgeRestrict)
}

func newFixtureWithPolicy(t *testing.T, policy app.PurgePolicy) *fixture {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	validator := fsm.New()
	logger := zap.NewNop()
	notifier := &recordingNotifier{}

	return &fixture{
		store:     store,
		branches:  app.NewBranchService(store, validator, policy, logger),
		rooms:     app.NewRoomService(store, validator, logger),
		contracts: app.NewContractService(store, validator, app.RoleScope, logger),
		invoices:  app.NewInvoiceService(store, validator, notifier, app.RoleScope, app.DefaultBilling, logger),
		users:     app.NewUserService(store, logger).WithHashCost(bcrypt.MinCost),
		notifier:  notifier,
	}
}

func (f *fixture) branch(t *testing.T, name string) domain.Branch {
	t.Helper()
	b, err := f.branches.Create(ctx, app.BranchInput{Name: name, Address: "12 Tran Phu"})
	require.NoError(t, err)
	return b
}

func (f *fixture) room(t *testing.T, branchID, number string) domain.Room {
	t.Helper()
	r, err := f.rooms.Create(ctx, app.RoomInput{BranchID: branchID, RoomNumber: number, Price: 3500000, Area: 25})
	require.NoError(t, err)
	return r
}

func (f *fixture) tenant(t *testing.T, email string) domain.User {
	t.Helper()
	u, err := f.users.Register(ctx, app.UserInput{Email: email, Password: "secret123", FullName: "Tenant"})
	require.NoError(t, err)
	return u
}

func (f *fixture) lease(t *testing.T, roomID, userID string) domain.Contract {
	t.Helper()
	c, err := f.contracts.Create(ctx, leaseInput(roomID, userID))
	require.NoError(t, err)
	return c
}

func leaseInput(roomID, userID string) app.ContractInput {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return app.ContractInput{
		RoomID:    roomID,
		UserID:    userID,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		Deposit:   3500000,
	}
}

func (f *fixture) roomStatus(t *testing.T, id string) domain.RoomStatus {
	t.Helper()
	r, err := f.store.Rooms().Get(ctx, id, domain.ViewAny)
	require.NoError(t, err)
	return r.Status
}

// requireOccupancyInvariant checks every room: OCCUPIED iff exactly one live
// ACTIVE contract, MAINTENANCE iff trashed, AVAILABLE otherwise. Every live
// ACTIVE contract must also belong to a live tenant.
func (f *fixture) requireOccupancyInvariant(t *testing.T) {
	t.Helper()
	rooms, err := f.store.Rooms().List(ctx, domain.ViewAny)
	require.NoError(t, err)
	contracts, err := f.store.Contracts().List(ctx, domain.ViewActive)
	require.NoError(t, err)

	active := make(map[string]int)
	for _, c := range contracts {
		if c.Status == domain.ContractActive {
			active[c.RoomID]++
			_, err := f.store.Users().Get(ctx, c.UserID, domain.ViewActive)
			require.NoError(t, err, "active contract %s belongs to a trashed tenant", c.ID)
		}
	}

	for _, r := range rooms {
		switch {
		case r.Deleted():
			require.Equal(t, domain.RoomMaintenance, r.Status, "trashed room %s", r.RoomNumber)
			require.Zero(t, active[r.ID], "trashed room %s has active contracts", r.RoomNumber)
		case active[r.ID] == 1:
			require.Equal(t, domain.RoomOccupied, r.Status, "room %s", r.RoomNumber)
		default:
			require.Zero(t, active[r.ID], "room %s has %d active contracts", r.RoomNumber, active[r.ID])
			require.Equal(t, domain.RoomAvailable, r.Status, "room %s", r.RoomNumber)
		}
	}
}
