// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"

	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/model"
)

// Service errors.
var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrNotFound           = errors.New("entry not found")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("session is missing or expired")
	ErrAccountNotFound    = errors.New("account not found")
)

// DateCache caches the calendar index of an account.
//
// Get returns cache.ErrCacheMiss when nothing is cached, together with the
// generation of the owner's index. Set stores an index read from the store
// only while that generation is still current; Invalidate moves it on, so a
// fill that raced with a mutation is dropped instead of cached.
type DateCache interface {
	GetEntryDates(ctx context.Context, ownerID string) ([]calendar.Date, int64, error)
	SetEntryDates(ctx context.Context, ownerID string, generation int64, dates []calendar.Date) (bool, error)
	InvalidateEntryDates(ctx context.Context, ownerID string) error
}

// SessionStore keeps issued login sessions.
// Get returns cache.ErrSessionNotFound for unknown or expired tokens.
type SessionStore interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
