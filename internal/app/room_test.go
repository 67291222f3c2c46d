package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestRoomCreate(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")

	r := f.room(t, b.ID, "101")
	assert.Equal(t, domain.RoomAvailable, r.Status)

	tests := []struct {
		name  string
		input app.RoomInput
		kind  error
	}{
		{"duplicate number", app.RoomInput{BranchID: b.ID, RoomNumber: "101", Price: 1}, domain.ErrConflict},
		{"duplicate number with spaces", app.RoomInput{BranchID: b.ID, RoomNumber: " 101 ", Price: 1}, domain.ErrConflict},
		{"missing branch", app.RoomInput{BranchID: "nope", RoomNumber: "201", Price: 1}, domain.ErrNotFound},
		{"empty number", app.RoomInput{BranchID: b.ID, RoomNumber: " ", Price: 1}, domain.ErrBadRequest},
		{"negative price", app.RoomInput{BranchID: b.ID, RoomNumber: "301", Price: -1}, domain.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.rooms.Create(ctx, tt.input)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestRoomCreate_TrashedBranch(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	require.NoError(t, f.branches.SoftDelete(ctx, b.ID))

	_, err := f.rooms.Create(ctx, app.RoomInput{BranchID: b.ID, RoomNumber: "101"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoomCreate_SameNumberInOtherBranch(t *testing.T) {
	f := newFixture(t)
	f.room(t, f.branch(t, "Center").ID, "101")

	_, err := f.rooms.Create(ctx, app.RoomInput{BranchID: f.branch(t, "River").ID, RoomNumber: "101"})
	require.NoError(t, err)
}

func TestRoomUpdate(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	f.room(t, b.ID, "102")

	price := int64(4000000)
	got, err := f.rooms.Update(ctx, r.ID, domain.RoomPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, price, got.Price)

	// Keeping its own number is not a conflict.
	same := "101"
	_, err = f.rooms.Update(ctx, r.ID, domain.RoomPatch{RoomNumber: &same})
	require.NoError(t, err)

	taken := "102"
	_, err = f.rooms.Update(ctx, r.ID, domain.RoomPatch{RoomNumber: &taken})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.rooms.Update(ctx, "missing", domain.RoomPatch{Price: &price})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoomSoftDelete(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")

	require.NoError(t, f.rooms.SoftDelete(ctx, r.ID))

	assert.Equal(t, domain.RoomMaintenance, f.roomStatus(t, r.ID))
	_, err := f.rooms.Get(ctx, r.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.rooms.List(ctx, domain.RoomFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	trash, err := f.rooms.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, r.ID, trash[0].ID)
}

func TestRoomSoftDelete_Occupied(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	f.lease(t, r.ID, f.tenant(t, "an@example.com").ID)

	err := f.rooms.SoftDelete(ctx, r.ID)

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.RoomOccupied, f.roomStatus(t, r.ID))
	f.requireOccupancyInvariant(t)
}

func TestRoomRestore(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	require.NoError(t, f.rooms.SoftDelete(ctx, r.ID))

	require.NoError(t, f.rooms.Restore(ctx, r.ID))

	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))
	require.ErrorIs(t, f.rooms.Restore(ctx, r.ID), domain.ErrNotFound, "only trashed rooms can be restored")
	f.requireOccupancyInvariant(t)
}

func TestRoomRestore_NumberReused(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	require.NoError(t, f.rooms.SoftDelete(ctx, r.ID))
	f.room(t, b.ID, "101")

	err := f.rooms.Restore(ctx, r.ID)

	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.RoomMaintenance, f.roomStatus(t, r.ID))
}

func TestRoomRestore_BranchTrashed(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	require.NoError(t, f.branches.SoftDelete(ctx, b.ID))

	require.ErrorIs(t, f.rooms.Restore(ctx, r.ID), domain.ErrConflict)
}

func TestRoomHardDelete(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")

	require.ErrorIs(t, f.rooms.HardDelete(ctx, r.ID), domain.ErrNotFound, "live rooms cannot be purged")

	require.NoError(t, f.rooms.SoftDelete(ctx, r.ID))
	require.NoError(t, f.rooms.HardDelete(ctx, r.ID))

	require.ErrorIs(t, f.rooms.Restore(ctx, r.ID), domain.ErrNotFound)
	_, err := f.store.Rooms().Get(ctx, r.ID, domain.ViewAny)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoomHardDelete_Referenced(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	r := f.room(t, b.ID, "101")
	c := f.lease(t, r.ID, f.tenant(t, "an@example.com").ID)
	_, err := f.contracts.Terminate(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, f.rooms.SoftDelete(ctx, r.ID))

	require.ErrorIs(t, f.rooms.HardDelete(ctx, r.ID), domain.ErrConflict)
}
