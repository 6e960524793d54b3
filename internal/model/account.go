// Package model defines domain entities for the application.
package model

import "time"

// Account is an authenticated identity that owns entries and a theme preference.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasUsablePassword reports whether the account can log in with a password.
// Accounts brought over by the legacy importer carry an unusable hash until reset.
func (a *Account) HasUsablePassword() bool {
	return a.PasswordHash != "" && a.PasswordHash != UnusablePassword
}

// UnusablePassword is stored in place of a hash for accounts that must reset
// their password before logging in.
const UnusablePassword = "!"
