package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

// sessionTokenBytes is the entropy of a session token.
const sessionTokenBytes = 32

var tokenFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// NewSessionToken returns a random URL-safe session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidTokenFormat reports whether token could have come from NewSessionToken.
// Malformed tokens are rejected before touching the session store.
func ValidTokenFormat(token string) bool {
	return tokenFormat.MatchString(token)
}
