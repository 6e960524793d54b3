package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daybook/daybook/internal/cache"
	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/litestore"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/testutil"
)

func newStore(t *testing.T, loc *time.Location) *litestore.Store {
	t.Helper()
	s, err := litestore.Open(context.Background(), ":memory:", loc)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func newAccount(t *testing.T, s *litestore.Store, prefix string) *model.Account {
	t.Helper()
	a := testutil.NewTestAccount(t, prefix)
	require.NoError(t, s.CreateAccount(context.Background(), a))
	return a
}

// fixedClock returns a clock that can be moved by tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// memoryDateCache is a DateCache kept in maps, with the same generation
// check as the Redis implementation.
type memoryDateCache struct {
	mu    sync.Mutex
	dates map[string][]calendar.Date
	gens  map[string]int64
}

func newMemoryDateCache() *memoryDateCache {
	return &memoryDateCache{
		dates: make(map[string][]calendar.Date),
		gens:  make(map[string]int64),
	}
}

func (m *memoryDateCache) GetEntryDates(_ context.Context, ownerID string) ([]calendar.Date, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dates, ok := m.dates[ownerID]
	if !ok {
		return nil, m.gens[ownerID], cache.ErrCacheMiss
	}
	return dates, m.gens[ownerID], nil
}

func (m *memoryDateCache) SetEntryDates(_ context.Context, ownerID string, generation int64, dates []calendar.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[ownerID] != generation {
		return false, nil
	}
	m.dates[ownerID] = dates
	return true, nil
}

func (m *memoryDateCache) InvalidateEntryDates(_ context.Context, ownerID string) error {
	m.mu.Lock()
	m.gens[ownerID]++
	delete(m.dates, ownerID)
	m.mu.Unlock()
	return nil
}

func (m *memoryDateCache) has(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.dates[ownerID]
	return ok
}

func (m *memoryDateCache) cached(ownerID string) []calendar.Date {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dates[ownerID]
}

func contents(entries []*model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}
