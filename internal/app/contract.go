package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// ContractInput holds the fields of a new contract.
type ContractInput struct {
	RoomID       string
	UserID       string
	StartDate    time.Time
	EndDate      time.Time
	Deposit      int64
	ScanImageRef string
}

// ContractService orchestrates lease creation and termination. Every write
// that touches a room's status goes through roomTransition inside the same
// transaction as the contract write.
type ContractService struct {
	*Trash[domain.Contract]
	store     domain.Store
	validator domain.TransitionValidator
	rooms     roomTransition
	scope     ScopePolicy
	logger    *zap.Logger
}

// NewContractService creates a service with the given adapters.
func NewContractService(store domain.Store, validator domain.TransitionValidator, scope ScopePolicy, logger *zap.Logger) *ContractService {
	s := &ContractService{
		store:     store,
		validator: validator,
		rooms:     roomTransition{validator: validator},
		scope:     scope,
		logger:    logger,
	}
	s.Trash = NewTrash(store,
		func(r domain.Repositories) domain.Recoverable[domain.Contract] { return r.Contracts() },
		TrashHooks[domain.Contract]{
			AfterDelete:   s.releaseRoom,
			BeforeRestore: s.checkLeaseRestorable,
			AfterRestore:  s.reoccupyRoom,
		})
	return s
}

// Create inserts an ACTIVE contract and occupies its room in one
// transaction. When two callers race for the same room, the loser gets a
// bad request.
func (s *ContractService) Create(ctx context.Context, in ContractInput) (domain.Contract, error) {
	if err := validatePeriod(in.StartDate, in.EndDate); err != nil {
		return domain.Contract{}, err
	}
	if in.Deposit < 0 {
		return domain.Contract{}, &domain.InvalidInputError{Field: "deposit", Reason: "must not be negative"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Contract{}, fmt.Errorf("generating contract id: %w", err)
	}
	c := domain.NewContract(id, in.RoomID, in.UserID, in.StartDate, in.EndDate, in.Deposit, in.ScanImageRef)

	err = s.store.Atomically(ctx, func(repos domain.Repositories) error {
		room, err := repos.Rooms().Get(ctx, c.RoomID, domain.ViewActive)
		if err != nil {
			return err
		}
		if _, err := repos.Users().Get(ctx, c.UserID, domain.ViewActive); err != nil {
			return err
		}
		if room.Status != domain.RoomAvailable {
			return roomUnavailable(room)
		}

		if _, err := s.rooms.apply(ctx, repos, room.ID, domain.EventOccupy); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return roomUnavailable(room)
			}
			return err
		}
		return repos.Contracts().Create(ctx, c)
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.logger.Info("contract created",
		zap.String("contract.id", c.ID),
		zap.String("room.id", c.RoomID),
		zap.String("user.id", c.UserID),
	)
	return c, nil
}

// Terminate ends a lease and frees its room. Terminating an already
// terminated contract changes nothing.
func (s *ContractService) Terminate(ctx context.Context, id string) (domain.Contract, error) {
	var c domain.Contract
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		c, err = repos.Contracts().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}

		next, err := s.validator.Apply(ctx, domain.ContractLifecycle, string(c.Status), domain.EventTerminate)
		if err != nil {
			return err
		}
		if next == string(c.Status) {
			return nil
		}

		c.Status = domain.ContractStatus(next)
		if err := repos.Contracts().Update(ctx, c); err != nil {
			return err
		}
		_, err = s.rooms.apply(ctx, repos, c.RoomID, domain.EventVacate)
		return err
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.logger.Info("contract terminated", zap.String("contract.id", c.ID), zap.String("room.id", c.RoomID))
	return c, nil
}

// Get returns a live contract visible to the principal.
func (s *ContractService) Get(ctx context.Context, id string, p domain.Principal) (domain.Contract, error) {
	c, err := s.store.Contracts().Get(ctx, id, domain.ViewActive)
	if err != nil {
		return domain.Contract{}, err
	}
	if scope := s.scope(p); !scope.Unrestricted() && c.UserID != scope.TenantID {
		return domain.Contract{}, &domain.ForbiddenError{Entity: "contract", ID: id}
	}
	return c, nil
}

// List returns the live contracts visible to the principal.
func (s *ContractService) List(ctx context.Context, p domain.Principal) ([]domain.Contract, error) {
	return s.store.Contracts().Find(ctx, s.scope(p))
}

// Update applies a plain field patch without any status transition.
func (s *ContractService) Update(ctx context.Context, id string, patch domain.ContractPatch) (domain.Contract, error) {
	var c domain.Contract
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		c, err = repos.Contracts().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}
		patch.Apply(&c)
		if err := validatePeriod(c.StartDate, c.EndDate); err != nil {
			return err
		}
		if c.Deposit < 0 {
			return &domain.InvalidInputError{Field: "deposit", Reason: "must not be negative"}
		}
		return repos.Contracts().Update(ctx, c)
	})
	if err != nil {
		return domain.Contract{}, err
	}
	return c, nil
}

// releaseRoom frees the room of a contract that was holding it. A room that
// is itself in the trash stays in maintenance.
func (s *ContractService) releaseRoom(ctx context.Context, repos domain.Repositories, c domain.Contract) error {
	if !c.Occupies() {
		return nil
	}
	room, err := repos.Rooms().Get(ctx, c.RoomID, domain.ViewAny)
	if err != nil {
		return err
	}
	if room.Deleted() {
		return nil
	}
	_, err = s.rooms.apply(ctx, repos, c.RoomID, domain.EventVacate)
	return err
}

// checkLeaseRestorable refuses to restore an active contract whose tenant is
// in the trash, or onto a room that is trashed or already held by another
// active contract.
func (s *ContractService) checkLeaseRestorable(ctx context.Context, repos domain.Repositories, c domain.Contract) error {
	if c.Status != domain.ContractActive {
		return nil
	}

	if _, err := repos.Users().Get(ctx, c.UserID, domain.ViewActive); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ConflictError{Reason: fmt.Sprintf("tenant %q is in the trash", c.UserID)}
		}
		return err
	}

	room, err := repos.Rooms().Get(ctx, c.RoomID, domain.ViewAny)
	if err != nil {
		return err
	}
	if room.Deleted() {
		return &domain.ConflictError{Reason: fmt.Sprintf("room %q is in the trash", room.RoomNumber)}
	}

	other, err := repos.Contracts().ActiveForRoom(ctx, c.RoomID)
	switch {
	case err == nil:
		return &domain.ConflictError{Reason: fmt.Sprintf("room %q is already held by contract %q", room.RoomNumber, other.ID)}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}

func (s *ContractService) reoccupyRoom(ctx context.Context, repos domain.Repositories, c domain.Contract) error {
	if c.Status != domain.ContractActive {
		return nil
	}
	_, err := s.rooms.apply(ctx, repos, c.RoomID, domain.EventOccupy)
	return err
}

func roomUnavailable(room domain.Room) error {
	return &domain.InvalidInputError{
		Field:  "roomId",
		Reason: fmt.Sprintf("room %q is not available (status %s)", room.RoomNumber, room.Status),
	}
}

func validatePeriod(start, end time.Time) error {
	switch {
	case start.IsZero():
		return &domain.InvalidInputError{Field: "startDate", Reason: "is required"}
	case end.IsZero():
		return &domain.InvalidInputError{Field: "endDate", Reason: "is required"}
	case end.Before(start):
		return &domain.InvalidInputError{Field: "endDate", Reason: "must not precede startDate"}
	}
	return nil
}
