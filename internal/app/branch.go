package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// PurgePolicy decides what hard-deleting a branch does to its rooms.
type PurgePolicy string

const (
	// PurgeRestrict refuses while any room still references the branch.
	PurgeRestrict PurgePolicy = "restrict"
	// PurgeCascade hard-deletes the branch's rooms in the same transaction.
	PurgeCascade PurgePolicy = "cascade"
)

// ParsePurgePolicy validates a configured policy name.
func ParsePurgePolicy(s string) (PurgePolicy, error) {
	switch p := PurgePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PurgeRestrict, PurgeCascade:
		return p, nil
	case "":
		return PurgeRestrict, nil
	}
	return "", fmt.Errorf("unknown branch purge policy %q", s)
}

// BranchInput holds the fields of a new branch.
type BranchInput struct {
	Name        string
	Address     string
	ManagerName string
	ImageRef    string
}

// BranchService manages branches and cascades trash operations into their
// rooms.
type BranchService struct {
	*Trash[domain.Branch]
	store  domain.Store
	rooms  roomTransition
	policy PurgePolicy
	logger *zap.Logger
}

// NewBranchService creates a service with the given adapters.
func NewBranchService(store domain.Store, validator domain.TransitionValidator, policy PurgePolicy, logger *zap.Logger) *BranchService {
	s := &BranchService{
		store:  store,
		rooms:  roomTransition{validator: validator},
		policy: policy,
		logger: logger,
	}
	s.Trash = NewTrash(store,
		func(r domain.Repositories) domain.Recoverable[domain.Branch] { return r.Branches() },
		TrashHooks[domain.Branch]{
			BeforeDelete: s.checkNoOccupiedRooms,
			AfterDelete:  s.cascadeDelete,
			AfterRestore: s.cascadeRestore,
			BeforePurge:  s.purgeRooms,
		})
	return s
}

// Create persists a new branch.
func (s *BranchService) Create(ctx context.Context, in BranchInput) (domain.Branch, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Branch{}, &domain.InvalidInputError{Field: "name", Reason: "must not be empty"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Branch{}, fmt.Errorf("generating branch id: %w", err)
	}
	b := domain.NewBranch(id, strings.TrimSpace(in.Name), in.Address, in.ManagerName, in.ImageRef)

	if err := s.store.Branches().Create(ctx, b); err != nil {
		return domain.Branch{}, fmt.Errorf("creating branch: %w", err)
	}
	return b, nil
}

// Get returns a live branch with its live room count.
func (s *BranchService) Get(ctx context.Context, id string) (domain.Branch, error) {
	return s.store.Branches().Get(ctx, id, domain.ViewActive)
}

// List returns live branches.
func (s *BranchService) List(ctx context.Context) ([]domain.Branch, error) {
	return s.store.Branches().List(ctx, domain.ViewActive)
}

// Update applies a plain field patch.
func (s *BranchService) Update(ctx context.Context, id string, patch domain.BranchPatch) (domain.Branch, error) {
	var b domain.Branch
	err := s.store.Atomically(ctx, func(repos domain.Repositories) error {
		var err error
		b, err = repos.Branches().Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}
		patch.Apply(&b)
		if strings.TrimSpace(b.Name) == "" {
			return &domain.InvalidInputError{Field: "name", Reason: "must not be empty"}
		}
		return repos.Branches().Update(ctx, b)
	})
	if err != nil {
		return domain.Branch{}, err
	}
	return b, nil
}

func (s *BranchService) checkNoOccupiedRooms(ctx context.Context, repos domain.Repositories, b domain.Branch) error {
	rooms, err := repos.Rooms().ListByBranch(ctx, b.ID, domain.ViewActive)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		if r.Status == domain.RoomOccupied {
			return &domain.ConflictError{Reason: fmt.Sprintf("branch %q has occupied room %q", b.Name, r.RoomNumber)}
		}
	}
	return nil
}

// cascadeDelete trashes every live room of the branch and marks it as
// deleted by this branch.
func (s *BranchService) cascadeDelete(ctx context.Context, repos domain.Repositories, b domain.Branch) error {
	rooms, err := repos.Rooms().ListByBranch(ctx, b.ID, domain.ViewActive)
	if err != nil {
		return err
	}

	now := s.now()
	for _, r := range rooms {
		if err := repos.Rooms().SetDeleted(ctx, r.ID, &now); err != nil {
			return err
		}
		if err := repos.Rooms().SetDeletedByBranch(ctx, r.ID, b.ID); err != nil {
			return err
		}
		if _, err := s.rooms.apply(ctx, repos, r.ID, domain.EventRetire); err != nil {
			return err
		}
	}

	s.logger.Info("branch trashed", zap.String("branch.id", b.ID), zap.Int("rooms", len(rooms)))
	return nil
}

// cascadeRestore brings back only the rooms this branch's cascade trashed.
func (s *BranchService) cascadeRestore(ctx context.Context, repos domain.Repositories, b domain.Branch) error {
	rooms, err := repos.Rooms().ListByBranch(ctx, b.ID, domain.ViewTrash)
	if err != nil {
		return err
	}

	restored := 0
	for _, r := range rooms {
		if r.DeletedByBranch != b.ID {
			continue
		}
		if err := ensureNumberFree(ctx, repos, r); err != nil {
			return err
		}
		if err := repos.Rooms().SetDeleted(ctx, r.ID, nil); err != nil {
			return err
		}
		if err := repos.Rooms().SetDeletedByBranch(ctx, r.ID, ""); err != nil {
			return err
		}
		if _, err := s.rooms.apply(ctx, repos, r.ID, domain.EventReinstate); err != nil {
			return err
		}
		restored++
	}

	s.logger.Info("branch restored", zap.String("branch.id", b.ID), zap.Int("rooms", restored))
	return nil
}

func (s *BranchService) purgeRooms(ctx context.Context, repos domain.Repositories, b domain.Branch) error {
	rooms, err := repos.Rooms().ListByBranch(ctx, b.ID, domain.ViewAny)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		return nil
	}

	if s.policy != PurgeCascade {
		return &domain.ConflictError{Reason: fmt.Sprintf("branch %q still has %d rooms", b.Name, len(rooms))}
	}

	for _, r := range rooms {
		if err := ensureUnreferenced(ctx, repos, r); err != nil {
			return err
		}
		if err := repos.Rooms().Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}
