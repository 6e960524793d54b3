// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes passed to IncLogin.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Journal metrics
	IncEntryCreated()
	IncEntryUpdated()
	IncEntryDeleted()
	AddEntriesImported(n int)
	ObserveViewDuration(view string, duration time.Duration)

	// Calendar index cache
	IncCalendarCacheHit()
	IncCalendarCacheMiss()

	// Preferences
	IncThemeUpdated()
	IncThemeIgnored()

	// Accounts
	IncAccountRegistered()
	IncLogin(status string) // status: "success", "failure", "rate_limited"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
