package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the concrete types below
// carry the human-readable detail.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrForbidden       = errors.New("forbidden")
	ErrTransient       = errors.New("transient failure")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// NotFoundError is returned when an entity is absent, or is not in the
// expected trash state for the requested operation.
type NotFoundError struct {
	Entity string
	ID     string
	Trash  bool // the lookup targeted the trash view
}

func (e *NotFoundError) Error() string {
	if e.Trash {
		return fmt.Sprintf("%s %q not found in trash", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError is returned when a uniqueness rule or a business invariant
// blocks the operation.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InvalidInputError is returned for malformed or inconsistent input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrBadRequest }

// ForbiddenError is returned when the principal may not see the entity.
type ForbiddenError struct {
	Entity string
	ID     string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("access to %s %q is forbidden", e.Entity, e.ID)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Lifecycle string
	Event     Event
	Current   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: event %q is not valid from state %q", e.Lifecycle, e.Event, e.Current)
}

func (e *TransitionError) Is(target error) bool { return target == ErrConflict }

// TransientError wraps a storage or dependency failure the caller may retry
// from scratch.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient failure: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrTransient }
