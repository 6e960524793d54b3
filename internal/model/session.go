package model

import "time"

// Session is an issued login session.
// Token is only known to the client; storage keeps a digest of it.
type Session struct {
	Token     string    `json:"-"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	AccountID string
}
