package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestNotFoundError_Error(t *testing.T) {
	err := &domain.NotFoundError{Entity: "room", ID: "r1"}
	want := `room "r1" not found`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Trash = true
	want = `room "r1" not found in trash`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Lifecycle: "room",
		Event:     domain.EventOccupy,
		Current:   string(domain.RoomOccupied),
	}
	want := `room: event "occupy" is not valid from state "OCCUPIED"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", &domain.NotFoundError{Entity: "branch", ID: "b"}, domain.ErrNotFound},
		{"conflict", &domain.ConflictError{Reason: "room is occupied"}, domain.ErrConflict},
		{"invalid input", &domain.InvalidInputError{Field: "month", Reason: "out of range"}, domain.ErrBadRequest},
		{"forbidden", &domain.ForbiddenError{Entity: "contract", ID: "c"}, domain.ErrForbidden},
		{"transition", &domain.TransitionError{Lifecycle: "invoice"}, domain.ErrConflict},
		{"transient", &domain.TransientError{Err: errors.New("database is locked")}, domain.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, tt.kind)
			}
		})
	}
}

func TestInvalidInputError_NoField(t *testing.T) {
	err := &domain.InvalidInputError{Reason: "room is not available"}
	if got := err.Error(); got != "room is not available" {
		t.Errorf("Error() = %q", got)
	}
}
