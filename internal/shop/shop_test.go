// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"njyot/internal/database"
	"njyot/internal/models"
	"njyot/internal/storage"
)

// tickingClock returns a time one second later on every call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// newTestService returns a Service over a freshly seeded in-memory store.
func newTestService(t *testing.T) (*Service, *storage.Memory) {
	t.Helper()
	medium := storage.NewMemory()
	db, err := database.Open(context.Background(), medium,
		database.WithBcryptCost(bcrypt.MinCost),
		database.WithClock(tickingClock()),
	)
	require.NoError(t, err)

	svc := New(db)
	svc.bcryptCost = bcrypt.MinCost
	return svc, medium
}

func ptr[T any](v T) *T { return &v }

func TestSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	assert.Equal(t, "NJYOT", svc.Settings().Get(models.SettingSiteName, ""))

	require.NoError(t, svc.UpdateSetting(ctx, models.SettingContactEmail, "hello@njyot.in"))
	v, err := svc.Setting(models.SettingContactEmail)
	require.NoError(t, err)
	assert.Equal(t, "hello@njyot.in", v)

	_, err = svc.Setting("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.UpdateSetting(ctx, "", "x"), ErrInvalidInput)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st := svc.Stats()
	assert.Equal(t, 0, st.TotalOrders)
	assert.Equal(t, 12, st.TotalProducts)
	assert.Empty(t, st.RecentOrders)

	var ids []int64
	for i := 0; i < 6; i++ {
		d, err := svc.PlaceOrder(ctx, checkout(CartLine{ProductID: 8, Quantity: 1}))
		require.NoError(t, err)
		ids = append(ids, d.Order.ID)
	}
	require.NoError(t, svc.MarkPaid(ctx, ids[0]))
	require.NoError(t, svc.MarkPaid(ctx, ids[1]))
	require.NoError(t, svc.UpdateOrderStatus(ctx, ids[2], models.OrderStatusProcessing))

	st = svc.Stats()
	assert.Equal(t, 6, st.TotalOrders)
	assert.Equal(t, 5, st.PendingOrders)
	assert.Equal(t, int64(2*549), st.TotalRevenue, "only paid orders count as revenue")
	require.Len(t, st.RecentOrders, 5)
	assert.Equal(t, ids[5], st.RecentOrders[0].ID, "newest first")
	assert.Equal(t, ids[1], st.RecentOrders[4].ID)

	assert.ErrorIs(t, svc.MarkPaid(ctx, 999), ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, err := svc.Authenticate("admin", database.DefaultAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = svc.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("nobody", database.DefaultAdminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, svc.SetAdminPassword(ctx, "admin", "short"), ErrInvalidInput)
	assert.ErrorIs(t, svc.SetAdminPassword(ctx, "nobody", "long-enough"), ErrNotFound)

	require.NoError(t, svc.SetAdminPassword(ctx, "admin", "new-password"))
	_, err = svc.Authenticate("admin", database.DefaultAdminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate("admin", "new-password")
	assert.NoError(t, err)
}
