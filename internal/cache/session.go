package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daybook/daybook/internal/auth"
	"github.com/daybook/daybook/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for sessions.
	sessionPrefix = "session:"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

// cachedSession is the stored form of a session.
type cachedSession struct {
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// sessionKey derives the Redis key; the raw token is never stored.
func sessionKey(token string) string {
	return sessionPrefix + auth.Digest(token)
}

// CreateSession stores s until s.ExpiresAt.
func (c *Cache) CreateSession(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(cachedSession{AccountID: s.AccountID, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, sessionKey(s.Token), data, ttl).Err()
}

// GetSession resolves a token into its session.
func (c *Cache) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as logged out
		return nil, ErrSessionNotFound
	}

	return &model.Session{Token: token, AccountID: cached.AccountID, ExpiresAt: cached.ExpiresAt}, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKey(token)).Err()
}

// MemorySessions keeps sessions in process memory.
// It stands in for Redis in development and tests; sessions do not survive a restart.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]cachedSession
	now      func() time.Time
}

// NewMemorySessions creates an empty in-process session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]cachedSession), now: time.Now}
}

// CreateSession stores s until s.ExpiresAt.
func (m *MemorySessions) CreateSession(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[auth.Digest(s.Token)] = cachedSession{AccountID: s.AccountID, ExpiresAt: s.ExpiresAt}
	return nil
}

// GetSession resolves a token, dropping it when expired.
func (m *MemorySessions) GetSession(_ context.Context, token string) (*model.Session, error) {
	key := auth.Digest(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok := m.sessions[key]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(cached.ExpiresAt) {
		delete(m.sessions, key)
		return nil, ErrSessionNotFound
	}
	return &model.Session{Token: token, AccountID: cached.AccountID, ExpiresAt: cached.ExpiresAt}, nil
}

// DeleteSession removes a session.
func (m *MemorySessions) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, auth.Digest(token))
	m.mu.Unlock()
	return nil
}
