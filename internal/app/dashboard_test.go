package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

type mapCache struct {
	data map[string][]byte
	sets int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	c.sets++
	return nil
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	b := f.branch(t, "Center")
	rented := f.room(t, b.ID, "101")
	f.room(t, b.ID, "102")
	f.lease(t, rented.ID, f.tenant(t, "an@example.com").ID)

	now := time.Now().UTC()
	in := invoiceInput(rented.ID, 0, 0, 0, 0)
	in.Month, in.Year = int(now.Month()), now.Year()
	unpaid, err := f.invoices.Create(ctx, in)
	require.NoError(t, err)
	paidInv, err := f.invoices.Create(ctx, in)
	require.NoError(t, err)
	paid := domain.InvoicePaid
	_, err = f.invoices.Update(ctx, paidInv.ID, domain.InvoicePatch{Status: &paid})
	require.NoError(t, err)

	cache := &mapCache{data: make(map[string][]byte)}
	svc := app.NewDashboardService(f.store, cache, time.Minute, zap.NewNop())

	d, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Branches)
	assert.Equal(t, 2, d.Rooms)
	assert.Equal(t, 1, d.AvailableRooms)
	assert.Equal(t, 1, d.RentedRooms)
	assert.Equal(t, 1, d.Tenants)
	assert.Equal(t, paidInv.TotalAmount, d.RevenueThisMonth)
	assert.Equal(t, unpaid.TotalAmount, d.DebtThisMonth)
	require.Len(t, d.Chart, 6)
	assert.Equal(t, paidInv.TotalAmount, d.Chart[5].Revenue)
	assert.Equal(t, int(now.Month()), d.Chart[5].Month)

	// Second read is served from the cache.
	f.room(t, b.ID, "103")
	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Rooms)
	assert.Equal(t, 1, cache.sets)
}

func TestDashboard_WithoutCache(t *testing.T) {
	f := newFixture(t)
	svc := app.NewDashboardService(f.store, nil, time.Minute, zap.NewNop())

	d, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.Rooms)
	assert.Len(t, d.Chart, 6)
}
