// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"njyot/internal/storage"
)

// testClock hands out strictly increasing timestamps, one second apart.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// openTestStore opens a store over medium with a fast bcrypt cost and a
// deterministic clock.
func openTestStore(t *testing.T, medium storage.Medium, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost), WithClock(newTestClock().Now)}, opts...)
	s, err := Open(context.Background(), medium, opts...)
	require.NoError(t, err)
	return s
}

type seedCounts struct {
	categories, products, admins, settings int
}

func countSeeded(s *Store) seedCounts {
	return seedCounts{
		categories: s.Count(Select(Categories)),
		products:   s.Count(Select(Products)),
		admins:     s.Count(Select(AdminUsers)),
		settings:   len(s.AllSettings()),
	}
}

func TestOpen_SeedsDefaults(t *testing.T) {
	s := openTestStore(t, storage.NewMemory())

	assert.Equal(t, seedCounts{categories: 6, products: 12, admins: 1, settings: 5}, countSeeded(s))

	// Counters start one past the highest seeded id.
	s.mu.RLock()
	assert.Equal(t, int64(7), s.nextIDs[Categories])
	assert.Equal(t, int64(13), s.nextIDs[Products])
	assert.Equal(t, int64(2), s.nextIDs[AdminUsers])
	assert.Equal(t, int64(1), s.nextIDs[Orders])
	s.mu.RUnlock()

	rings, ok := s.GetRow(Select(Categories).Where(Eq("slug", "rings")))
	require.True(t, ok)
	assert.Equal(t, int64(4), rings.Int("id"))

	name, ok := s.GetSetting("site_name")
	require.True(t, ok)
	assert.Equal(t, "NJYOT", name)
}

func TestOpen_AdminPasswordIsHashed(t *testing.T) {
	s := openTestStore(t, storage.NewMemory(), WithAdminPassword("s3cret-pass"))

	admin, ok := s.GetRow(Select(AdminUsers).Where(Eq("username", "admin")))
	require.True(t, ok)

	hash := admin.String("password")
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}

func TestOpen_SeedingIsIdempotent(t *testing.T) {
	medium := storage.NewMemory()

	first := openTestStore(t, medium)
	before := countSeeded(first)

	second := openTestStore(t, medium)
	assert.Equal(t, before, countSeeded(second))

	require.NoError(t, second.Seed(context.Background()))
	assert.Equal(t, before, countSeeded(second))
}

func TestSeed_RestoresMissingGroups(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, storage.NewMemory())

	admin, ok := s.GetRow(Select(AdminUsers))
	require.True(t, ok)
	require.Equal(t, 1, s.RunQuery(ctx, Delete(AdminUsers, admin.Int("id"))).Affected)

	require.NoError(t, s.Seed(ctx))

	restored, ok := s.GetRow(Select(AdminUsers).Where(Eq("username", "admin")))
	require.True(t, ok)
	assert.Greater(t, restored.Int("id"), admin.Int("id"), "admin id must not be reused")
	assert.Equal(t, 6, s.Count(Select(Categories)), "catalog must not be duplicated")
}

func TestOpen_InvalidSnapshotReseeds(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{this is not json`},
		{name: "wrong version", data: `{"version":2,"tables":{}}`},
		{name: "missing tables", data: `{"version":1,"tables":{"categories":[]}}`},
		{name: "bad column value", data: `{"version":1,"tables":{"categories":[{"id":"one","name":"x"}],` +
			`"products":[],"customers":[],"orders":[],"order_items":[],"order_tracking":[],"admin_users":[],"settings":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			medium := storage.NewMemory()
			require.NoError(t, medium.Save(context.Background(), []byte(tt.data)))

			s := openTestStore(t, medium)
			assert.Equal(t, seedCounts{categories: 6, products: 12, admins: 1, settings: 5}, countSeeded(s))

			// The reseeded state replaces the broken snapshot.
			data, err := medium.Load(context.Background())
			require.NoError(t, err)
			_, _, err = decodeSnapshot(data)
			assert.NoError(t, err)
		})
	}
}

// unreadableMedium fails every load, like a network medium that is down.
type unreadableMedium struct {
	*storage.Memory
}

func (unreadableMedium) Load(context.Context) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestOpen_UnreadableMediumIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	medium := unreadableMedium{Memory: storage.NewMemory()}

	s := openTestStore(t, medium)
	assert.Equal(t, seedCounts{categories: 6, products: 12, admins: 1, settings: 5}, countSeeded(s))
	assert.Equal(t, 0, medium.Saves(), "opening does not replace a snapshot it could not read")

	s.RunQuery(ctx, Insert(Customers, "Meera", "meera@example.com"))
	assert.Equal(t, 1, medium.Saves())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "njyot.json")

	s := openTestStore(t, storage.NewFile(path))
	res := s.RunQuery(ctx, Insert(Products, "Test Ring", "test-ring", "A ring", 1000, 500, 4, nil, 10, true))
	require.Equal(t, int64(13), res.ID)
	deleted := s.RunQuery(ctx, Delete(Products, 12))
	require.Equal(t, 1, deleted.Affected)
	s.UpdateSetting(ctx, "site_name", "NJYOT Jewels")
	want, ok := s.GetRow(Select(Products).Where(Eq("id", res.ID)))
	require.True(t, ok)
	require.NoError(t, s.Close(ctx))

	reopened := openTestStore(t, storage.NewFile(path))
	got, ok := reopened.GetRow(Select(Products).Where(Eq("id", res.ID)))
	require.True(t, ok)

	for col, v := range want {
		if ts, isTime := v.(time.Time); isTime {
			assert.True(t, ts.Equal(got.Time(col)), "column %s", col)
			continue
		}
		assert.Equal(t, v, got[col], "column %s", col)
	}
	assert.Nil(t, got["image"])

	name, _ := reopened.GetSetting("site_name")
	assert.Equal(t, "NJYOT Jewels", name)

	// The counter survives the restart: id 13 is taken and 12 was deleted.
	next := reopened.RunQuery(ctx, Insert(Products, "Another", "another", "", 100))
	assert.Equal(t, int64(14), next.ID)
}

func TestSnapshot_SQLiteMedium(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "njyot.db")

	m, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := openTestStore(t, m)
	res := s.RunQuery(ctx, Insert(Categories, "Brooches", "brooches", "brooch.jpg"))
	require.Equal(t, int64(7), res.ID)
	require.NoError(t, s.Close(ctx))

	m2, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	reopened := openTestStore(t, m2)
	defer reopened.Close(ctx)

	row, ok := reopened.GetRow(Select(Categories).Where(Eq("slug", "brooches")))
	require.True(t, ok)
	assert.Equal(t, int64(7), row.Int("id"))
	assert.Equal(t, 7, reopened.Count(Select(Categories)))
}

func TestDecodeSnapshot_RaisesCounters(t *testing.T) {
	doc := map[string]any{
		"version": 1,
		"tables": map[string]any{
			"categories":     []any{map[string]any{"id": 9, "name": "Odd", "slug": "odd", "image": nil}},
			"products":       []any{},
			"customers":      []any{},
			"orders":         []any{},
			"order_items":    []any{},
			"order_tracking": []any{},
			"admin_users":    []any{},
			"settings":       []any{map[string]any{"key": "site_name", "value": "X"}},
		},
		"next_ids": map[string]any{"categories": 3, "products": 40},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	tables, nextIDs, err := decodeSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, int64(10), nextIDs[Categories], "counter below max id is raised")
	assert.Equal(t, int64(40), nextIDs[Products], "higher counter is kept")
	assert.Equal(t, int64(1), nextIDs[Orders])

	require.Len(t, tables[Categories], 1)
	assert.Equal(t, int64(9), tables[Categories][0]["id"])
	assert.Nil(t, tables[Categories][0]["image"])
	assert.Equal(t, "X", tables[Settings][0]["value"])
}

func TestPersist_OnlyWhenChanged(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemory()
	s := openTestStore(t, medium)
	saves := medium.Saves()

	s.RunQuery(ctx, Update(Products, 999, []string{"stock"}, 1))
	s.RunQuery(ctx, Delete(Products, 999))
	s.RunQuery(ctx, Insert(Products, "too", "many", "values", 1, 2, 3, "img", 4, true, "extra"))
	assert.Equal(t, saves, medium.Saves(), "no-op mutations must not persist")

	s.RunQuery(ctx, Update(Products, 1, []string{"stock"}, 3))
	assert.Equal(t, saves+1, medium.Saves())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, storage.Discard{})

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ids <- s.RunQuery(ctx, Insert(Customers, "Asha", "asha@example.com")).ID
		}()
		go func() {
			defer wg.Done()
			for _, r := range s.GetAll(Select(Customers)) {
				assert.NotZero(t, r.Int("id"))
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}
