package model

import "time"

// Theme is a display theme choice.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DefaultTheme is assigned to every new account.
const DefaultTheme = ThemeSystem

// Themes lists every accepted theme value.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// IsValid checks if the theme is one of the accepted values.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ParseTheme converts raw input into a Theme.
// The second result is false when the value is not an accepted theme.
func ParseTheme(raw string) (Theme, bool) {
	t := Theme(raw)
	return t, t.IsValid()
}

// ThemePreference holds the one theme setting of an account.
type ThemePreference struct {
	OwnerID   string    `json:"owner_id"`
	Theme     Theme     `json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}
