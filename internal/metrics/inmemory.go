package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EntriesCreated      uint64
	EntriesUpdated      uint64
	EntriesDeleted      uint64
	EntriesImported     uint64
	ViewCount           uint64
	ViewDurationTotalNs int64
	CalendarCacheHits   uint64
	CalendarCacheMisses uint64
	ThemesUpdated       uint64
	ThemesIgnored       uint64
	AccountsRegistered  uint64
	Logins              map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	entriesCreated      uint64
	entriesUpdated      uint64
	entriesDeleted      uint64
	entriesImported     uint64
	viewCount           uint64
	viewDurationTotalNs int64
	calendarCacheHits   uint64
	calendarCacheMisses uint64
	themesUpdated       uint64
	themesIgnored       uint64
	accountsRegistered  uint64

	mu     sync.Mutex
	logins map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{logins: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	logins := make(map[string]uint64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		EntriesCreated:      atomic.LoadUint64(&m.entriesCreated),
		EntriesUpdated:      atomic.LoadUint64(&m.entriesUpdated),
		EntriesDeleted:      atomic.LoadUint64(&m.entriesDeleted),
		EntriesImported:     atomic.LoadUint64(&m.entriesImported),
		ViewCount:           atomic.LoadUint64(&m.viewCount),
		ViewDurationTotalNs: atomic.LoadInt64(&m.viewDurationTotalNs),
		CalendarCacheHits:   atomic.LoadUint64(&m.calendarCacheHits),
		CalendarCacheMisses: atomic.LoadUint64(&m.calendarCacheMisses),
		ThemesUpdated:       atomic.LoadUint64(&m.themesUpdated),
		ThemesIgnored:       atomic.LoadUint64(&m.themesIgnored),
		AccountsRegistered:  atomic.LoadUint64(&m.accountsRegistered),
		Logins:              logins,
	}
}

// IncEntryCreated increments entry created counter.
func (m *InMemoryRecorder) IncEntryCreated() {
	atomic.AddUint64(&m.entriesCreated, 1)
}

// IncEntryUpdated increments entry updated counter.
func (m *InMemoryRecorder) IncEntryUpdated() {
	atomic.AddUint64(&m.entriesUpdated, 1)
}

// IncEntryDeleted increments entry deleted counter.
func (m *InMemoryRecorder) IncEntryDeleted() {
	atomic.AddUint64(&m.entriesDeleted, 1)
}

// AddEntriesImported adds n to the imported counter.
func (m *InMemoryRecorder) AddEntriesImported(n int) {
	if n > 0 {
		atomic.AddUint64(&m.entriesImported, uint64(n))
	}
}

// ObserveViewDuration records how long a view took to build.
func (m *InMemoryRecorder) ObserveViewDuration(_ string, duration time.Duration) {
	atomic.AddUint64(&m.viewCount, 1)
	atomic.AddInt64(&m.viewDurationTotalNs, duration.Nanoseconds())
}

// IncCalendarCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCalendarCacheHit() {
	atomic.AddUint64(&m.calendarCacheHits, 1)
}

// IncCalendarCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCalendarCacheMiss() {
	atomic.AddUint64(&m.calendarCacheMisses, 1)
}

// IncThemeUpdated increments theme updated counter.
func (m *InMemoryRecorder) IncThemeUpdated() {
	atomic.AddUint64(&m.themesUpdated, 1)
}

// IncThemeIgnored counts theme changes dropped for an unknown value.
func (m *InMemoryRecorder) IncThemeIgnored() {
	atomic.AddUint64(&m.themesIgnored, 1)
}

// IncAccountRegistered increments registered account counter.
func (m *InMemoryRecorder) IncAccountRegistered() {
	atomic.AddUint64(&m.accountsRegistered, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.mu.Lock()
	m.logins[status]++
	m.mu.Unlock()
}
