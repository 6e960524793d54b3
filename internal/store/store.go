// Package store declares the persistence contracts of the journal core.
// Implementations live in internal/repository (PostgreSQL) and
// internal/litestore (SQLite); every query is scoped by owner.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/model"
)

// Errors shared by all store implementations.
var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// EntryStore persists journal entries.
type EntryStore interface {
	// CreateEntry inserts e as given; ID and timestamps are set by the caller.
	CreateEntry(ctx context.Context, e *model.Entry) error

	// GetEntry loads an entry owned by ownerID. ErrNotFound covers both a
	// missing entry and one owned by another account.
	GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error)

	// DeleteEntry removes the entry only when ownerID owns it and reports
	// whether anything was removed.
	DeleteEntry(ctx context.Context, ownerID, id string) (bool, error)

	// UpdateEntryContent replaces the content and refreshes updated_at.
	UpdateEntryContent(ctx context.Context, ownerID, id, content string, updatedAt time.Time) error

	// ListEntriesOn returns the entries created on day d, most recent first.
	ListEntriesOn(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error)

	// ListEntriesBefore returns the entries created before day d, in no particular order.
	ListEntriesBefore(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error)

	// EntryDates returns the ascending distinct days that have at least one entry.
	EntryDates(ctx context.Context, ownerID string) ([]calendar.Date, error)

	// ImportEntries inserts entries keeping their timestamps. An entry with the
	// same owner, creation time and content as an existing one is skipped.
	ImportEntries(ctx context.Context, entries []*model.Entry) (int, error)
}

// PreferenceStore persists the single theme preference of each account.
type PreferenceStore interface {
	// GetOrCreatePreference returns the preference, creating it with the
	// default theme when absent.
	GetOrCreatePreference(ctx context.Context, ownerID string) (*model.ThemePreference, error)

	// SetTheme stores theme for ownerID, creating the row if needed.
	SetTheme(ctx context.Context, ownerID string, theme model.Theme) (*model.ThemePreference, error)
}

// AccountStore persists accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *model.Account) error
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	// GetAccountByUsername matches case-insensitively.
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	// SetPasswordHash replaces the stored hash. ErrNotFound when id is unknown.
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Store bundles the contracts together with lifecycle hooks.
type Store interface {
	EntryStore
	PreferenceStore
	AccountStore
	Ping(ctx context.Context) error
	Close()
}
