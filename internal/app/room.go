package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// RoomInput holds the fields of a new room.
type RoomInput struct {
	BranchID   string
	RoomNumber string
	Price      int64
	Area       float64
	ImageRef   string
}

// RoomService manages rooms and keeps their status consistent with
// contracts and the trash.
type RoomService struct {
	*Trash[domain.Room]
	store  domain.Store
	rooms  roomTransition
	logger *zap.Logger
}

// NewRoomService creates a service with the given adapters.
func NewRoomService(store domain.Store, validator domain.TransitionValidator, logger *zap.Logger) *RoomService {
	s := &RoomService{
		store:  store,
		rooms:  roomTransition{validator: validator},
		logger: logger,
	}
	s.Trash = NewTrash(store,
		func(r domain.Repositories) domain.Recoverable[domain.Room] { return r.Rooms() },
		TrashHooks[domain.Room]{
			BeforeDelete:  s.checkVacant,
			AfterDelete:   s.retire,
			BeforeRestore: s.checkRestorable,
			AfterRestore:  s.reinstate,
			BeforePurge:   s.checkUnreferenced,
		})
	return s
}

// Create adds an AVAILABLE room to a live branch.
func (s *RoomService) Create(ctx context.Context, in RoomInput) (domain.Room, error) {
	if err := validateRoom(in.RoomNumber, in.Price, in.Area); err != nil {
		return domain.Room{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Room{}, fmt.Errorf("generating room id: %w", err)
	}
	room := domain.NewRoom(id, in.BranchID, strings.TrimSpace(in.RoomNumber), in.Price, in.Area, in.ImageRef)

	err = s.store.Atomically(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Branches().Get(ctx, room.BranchID, domain.ViewActive); err != nil {
			return err
		}
		if err := ensureNumberFree(ctx, repos, room); err != nil {
			return err
		}
		return repos.Rooms().Create(ctx, room)
	})
	if err != nil {
		return domain.Room{}, err
	}

	s.logger.Info("room created", zap.String("room.id", room.ID), zap.String("branch.id", room.BranchID))
	return room, nil
}

// Get returns a live room.
func (s *RoomService) Get(ctx context.Context, id string) (domain.Room, error) {
	return s.store.Rooms().Get(ctx, id, domain.ViewActive)
}

// List returns live rooms matching the filter.
func (s *RoomService) List(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	return s.store.Rooms().Find(ctx, filter)
}

// Update applies a plain field patch. Moving or renumbering a room
// re-validates room-number uniqueness in the target branch.
func (s *RoomService) Update(ctx context.Context, id string, patch domain.RoomPatch) (domain.Room, error) {
	var room domain.Room
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		room, err = repos.Rooms().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}

		before := room
		patch.Apply(&room)
		room.RoomNumber = strings.TrimSpace(room.RoomNumber)
		if err := validateRoom(room.RoomNumber, room.Price, room.Area); err != nil {
			return err
		}

		if room.BranchID != before.BranchID {
			if _, err := repos.Branches().Get(ctx, room.BranchID, domain.ViewActive); err != nil {
				return err
			}
		}
		if room.BranchID != before.BranchID || room.RoomNumber != before.RoomNumber {
			if err := ensureNumberFree(ctx, repos, room); err != nil {
				return err
			}
		}
		return repos.Rooms().Update(ctx, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (s *RoomService) checkVacant(_ context.Context, _ domain.Repositories, room domain.Room) error {
	if room.Status == domain.RoomOccupied {
		return &domain.ConflictError{Reason: fmt.Sprintf("room %q is occupied", room.RoomNumber)}
	}
	return nil
}

func (s *RoomService) retire(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	_, err := s.rooms.apply(ctx, repos, room.ID, domain.EventRetire)
	return err
}

func (s *RoomService) checkRestorable(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	if _, err := repos.Branches().Get(ctx, room.BranchID, domain.ViewActive); err != nil {
		return &domain.ConflictError{Reason: fmt.Sprintf("branch of room %q is not live", room.RoomNumber)}
	}
	return ensureNumberFree(ctx, repos, room)
}

func (s *RoomService) reinstate(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	if room.DeletedByBranch != "" {
		if err := repos.Rooms().SetDeletedByBranch(ctx, room.ID, ""); err != nil {
			return err
		}
	}
	_, err := s.rooms.apply(ctx, repos, room.ID, domain.EventReinstate)
	return err
}

func (s *RoomService) checkUnreferenced(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	return ensureUnreferenced(ctx, repos, room)
}

func ensureUnreferenced(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	referenced, err := repos.Rooms().Referenced(ctx, room.ID)
	if err != nil {
		return err
	}
	if referenced {
		return &domain.ConflictError{Reason: fmt.Sprintf("room %q still has contracts or invoices", room.RoomNumber)}
	}
	return nil
}

func ensureNumberFree(ctx context.Context, repos domain.Repositories, room domain.Room) error {
	taken, err := repos.Rooms().NumberTaken(ctx, room.BranchID, room.RoomNumber, room.ID)
	if err != nil {
		return err
	}
	if taken {
		return &domain.ConflictError{Reason: fmt.Sprintf("room number %q is already used in this branch", room.RoomNumber)}
	}
	return nil
}

func validateRoom(number string, price int64, area float64) error {
	switch {
	case strings.TrimSpace(number) == "":
		return &domain.InvalidInputError{Field: "roomNumber", Reason: "must not be empty"}
	case price < 0:
		return &domain.InvalidInputError{Field: "price", Reason: "must not be negative"}
	case area < 0:
		return &domain.InvalidInputError{Field: "area", Reason: "must not be negative"}
	}
	return nil
}
