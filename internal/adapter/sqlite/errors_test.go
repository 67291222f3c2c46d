package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/domain"
)

func newMockStore(t *testing.T) (*sqlite.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlite.Wrap(db), mock
}

func TestStorageErrors_LockedIsTransient(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM rooms").
		WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))

	_, err := store.Rooms().Get(context.Background(), "r-1", domain.ViewActive)
	if !errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected ErrTransient, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStorageErrors_BeginFailureIsTransient(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := store.Atomically(context.Background(), func(domain.Repositories) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected ErrTransient, got %v", err)
	}
}

func TestStorageErrors_RollbackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms SET status").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.Atomically(context.Background(), func(repos domain.Repositories) error {
		_, err := repos.Rooms().CompareAndSetStatus(context.Background(), "r-1", domain.RoomAvailable, domain.RoomOccupied)
		return err
	})
	if err == nil || errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected plain storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStorageErrors_UniqueIsConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO branches").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: branches.id (2067)"))

	err := store.Branches().Create(context.Background(), domain.NewBranch("b-1", "A", "", "", ""))
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}
