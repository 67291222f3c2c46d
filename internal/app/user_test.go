package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestUserRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(ctx, app.UserInput{Email: " An@Example.com ", Password: "secret123", FullName: "An", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTenant, u.Role, "registration always creates tenants")
	assert.Equal(t, "an@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	p, err := f.users.Authenticate(ctx, "an@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.Principal(), p)

	_, err = f.users.Authenticate(ctx, "an@example.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.users.Authenticate(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserCreate_Validation(t *testing.T) {
	f := newFixture(t)
	f.tenant(t, "an@example.com")

	tests := []struct {
		name  string
		input app.UserInput
		kind  error
	}{
		{"duplicate email", app.UserInput{Email: "AN@example.com", Password: "secret123"}, domain.ErrConflict},
		{"bad email", app.UserInput{Email: "not-an-email", Password: "secret123"}, domain.ErrBadRequest},
		{"short password", app.UserInput{Email: "binh@example.com", Password: "123"}, domain.ErrBadRequest},
		{"unknown role", app.UserInput{Email: "binh@example.com", Password: "secret123", Role: "OWNER"}, domain.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, tt.input)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestUserVisibilityAndUpdate(t *testing.T) {
	f := newFixture(t)
	an := f.tenant(t, "an@example.com")
	binh := f.tenant(t, "binh@example.com")

	_, err := f.users.Get(ctx, binh.ID, an.Principal())
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.users.Get(ctx, an.ID, an.Principal())
	require.NoError(t, err)
	assert.Equal(t, an.ID, got.ID)

	name := "An Nguyen"
	got, err = f.users.Update(ctx, an.ID, domain.UserPatch{FullName: &name}, an.Principal())
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)

	role := domain.RoleAdmin
	_, err = f.users.Update(ctx, an.ID, domain.UserPatch{Role: &role}, an.Principal())
	require.ErrorIs(t, err, domain.ErrForbidden, "tenants cannot promote themselves")

	_, err = f.users.Update(ctx, binh.ID, domain.UserPatch{FullName: &name}, an.Principal())
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err = f.users.Update(ctx, an.ID, domain.UserPatch{Role: &role}, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	password := "new-secret"
	_, err = f.users.Update(ctx, an.ID, domain.UserPatch{Password: &password}, an.Principal())
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, an.Email, password)
	require.NoError(t, err)
}

func TestUserSoftDelete_ActiveContract(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, f.branch(t, "Center").ID, "101")
	u := f.tenant(t, "an@example.com")
	c := f.lease(t, r.ID, u.ID)

	require.ErrorIs(t, f.users.SoftDelete(ctx, u.ID), domain.ErrConflict)

	_, err := f.contracts.Terminate(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, f.users.SoftDelete(ctx, u.ID))

	_, err = f.users.Authenticate(ctx, u.Email, "secret123")
	require.ErrorIs(t, err, domain.ErrUnauthenticated, "trashed users cannot sign in")

	require.ErrorIs(t, f.users.HardDelete(ctx, u.ID), domain.ErrConflict, "contract history references the user")
}

func TestUserRestore_EmailReused(t *testing.T) {
	f := newFixture(t)
	u := f.tenant(t, "an@example.com")
	require.NoError(t, f.users.SoftDelete(ctx, u.ID))
	f.tenant(t, "an@example.com")

	require.ErrorIs(t, f.users.Restore(ctx, u.ID), domain.ErrConflict)
}

func TestUserHardDelete(t *testing.T) {
	f := newFixture(t)
	u := f.tenant(t, "an@example.com")

	require.ErrorIs(t, f.users.HardDelete(ctx, u.ID), domain.ErrNotFound)
	require.NoError(t, f.users.SoftDelete(ctx, u.ID))
	require.NoError(t, f.users.HardDelete(ctx, u.ID))
	require.ErrorIs(t, f.users.Restore(ctx, u.ID), domain.ErrNotFound)
}
