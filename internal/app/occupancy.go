package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// roomTransition is the only code that writes room status. Every contract
// and trash operation that moves a room goes through apply, inside the
// caller's transaction.
type roomTransition struct {
	validator domain.TransitionValidator
}

// apply validates event against the room's stored status and writes the
// result conditioned on that status still being current. A concurrent change
// between the read and the write yields a ConflictError.
func (o roomTransition) apply(ctx context.Context, repos domain.Repositories, roomID string, event domain.Event) (domain.Room, error) {
	room, err := repos.Rooms().Get(ctx, roomID, domain.ViewAny)
	if err != nil {
		return domain.Room{}, err
	}

	next, err := o.validator.Apply(ctx, domain.RoomLifecycle, string(room.Status), event)
	if err != nil {
		return room, err
	}
	if next == string(room.Status) {
		return room, nil
	}

	ok, err := repos.Rooms().CompareAndSetStatus(ctx, roomID, room.Status, domain.RoomStatus(next))
	if err != nil {
		return room, fmt.Errorf("writing room status: %w", err)
	}
	if !ok {
		return room, &domain.ConflictError{Reason: fmt.Sprintf("room %q changed status concurrently", roomID)}
	}

	room.Status = domain.RoomStatus(next)
	return room, nil
}
