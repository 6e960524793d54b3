package dto

import (
	"time"

	"github.com/daybook/daybook/internal/model"
)

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned on register and login. The token is also set
// as a cookie; API clients send it back as a bearer token.
type SessionResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ThemeRequest is the body of POST /api/v1/preferences/theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse represents the theme preference.
type ThemeResponse struct {
	Theme     string    `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToAccountResponse converts an account.
func ToAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
	}
}

// ToSessionResponse converts an account and its new session.
func ToSessionResponse(a *model.Account, s *model.Session) *SessionResponse {
	return &SessionResponse{
		Account:   ToAccountResponse(a),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// ToThemeResponse converts a theme preference.
func ToThemeResponse(p *model.ThemePreference) *ThemeResponse {
	return &ThemeResponse{Theme: string(p.Theme), UpdatedAt: p.UpdatedAt}
}
