package app

import (
	"context"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Hook runs inside the trash transaction with the entity as read before the
// write.
type Hook[T any] func(ctx context.Context, repos domain.Repositories, v T) error

// TrashHooks carry the entity-specific invariant checks and cascades.
// Any hook may be nil. A hook error aborts and rolls back the operation.
type TrashHooks[T any] struct {
	BeforeDelete  Hook[T]
	AfterDelete   Hook[T]
	BeforeRestore Hook[T]
	AfterRestore  Hook[T]
	BeforePurge   Hook[T]
}

// Selector picks the repository of T from a set of repositories.
type Selector[T any] func(domain.Repositories) domain.Recoverable[T]

// Trash implements soft delete, restore, hard delete and the trash listing
// once for every entity type.
type Trash[T any] struct {
	store domain.Store
	repo  Selector[T]
	hooks TrashHooks[T]
	now   func() time.Time
}

// NewTrash creates the reversible-delete policy for one entity type.
func NewTrash[T any](store domain.Store, repo Selector[T], hooks TrashHooks[T]) *Trash[T] {
	return &Trash[T]{
		store: store,
		repo:  repo,
		hooks: hooks,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SoftDelete moves a live entity to the trash.
func (t *Trash[T]) SoftDelete(ctx context.Context, id string) error {
	return t.store.Atomically(ctx, func(repos domain.Repositories) error {
		repo := t.repo(repos)
		v, err := repo.Get(ctx, id, domain.ViewActive)
		if err != nil {
			return err
		}
		if err := run(ctx, t.hooks.BeforeDelete, repos, v); err != nil {
			return err
		}
		now := t.now()
		if err := repo.SetDeleted(ctx, id, &now); err != nil {
			return err
		}
		return run(ctx, t.hooks.AfterDelete, repos, v)
	})
}

// Restore brings a trashed entity back, re-validating its invariants.
func (t *Trash[T]) Restore(ctx context.Context, id string) error {
	return t.store.Atomically(ctx, func(repos domain.Repositories) error {
		repo := t.repo(repos)
		v, err := repo.Get(ctx, id, domain.ViewTrash)
		if err != nil {
			return err
		}
		if err := run(ctx, t.hooks.BeforeRestore, repos, v); err != nil {
			return err
		}
		if err := repo.SetDeleted(ctx, id, nil); err != nil {
			return err
		}
		return run(ctx, t.hooks.AfterRestore, repos, v)
	})
}

// HardDelete permanently removes a trashed entity.
func (t *Trash[T]) HardDelete(ctx context.Context, id string) error {
	return t.store.Atomically(ctx, func(repos domain.Repositories) error {
		repo := t.repo(repos)
		v, err := repo.Get(ctx, id, domain.ViewTrash)
		if err != nil {
			return err
		}
		if err := run(ctx, t.hooks.BeforePurge, repos, v); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// ListTrash returns the soft-deleted entities.
func (t *Trash[T]) ListTrash(ctx context.Context) ([]T, error) {
	return t.repo(t.store).List(ctx, domain.ViewTrash)
}

func run[T any](ctx context.Context, h Hook[T], repos domain.Repositories, v T) error {
	if h == nil {
		return nil
	}
	return h(ctx, repos, v)
}
