package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/daybook/daybook/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestSessionKey_HidesToken(t *testing.T) {
	t.Parallel()

	token := "Zm9vYmFyYmF6cXV4Zm9vYmFyYmF6cXV4Zm9vYmFy-_A"
	key := sessionKey(token)

	if !strings.HasPrefix(key, sessionPrefix) {
		t.Fatalf("sessionKey(%q) = %q, want prefix %q", token, key, sessionPrefix)
	}
	if strings.Contains(key, token) {
		t.Fatalf("session key must not contain the raw token: %s", key)
	}
	if sessionKey(token) != key {
		t.Fatal("session key should be deterministic")
	}
}

func TestMemorySessions_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemorySessions()
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	s := &model.Session{Token: "tok", AccountID: "acct-1", ExpiresAt: now.Add(time.Hour)}
	if err := m.CreateSession(ctx, s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := m.GetSession(ctx, "tok")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Errorf("AccountID = %q, want acct-1", got.AccountID)
	}

	if err := m.DeleteSession(ctx, "tok"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := m.GetSession(ctx, "tok"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestMemorySessions_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemorySessions()
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.CreateSession(ctx, &model.Session{Token: "tok", AccountID: "a", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := m.GetSession(ctx, "tok"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
}
