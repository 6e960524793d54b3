package model

import (
	"time"
	"unicode/utf8"
)

// previewLength is the number of runes kept by Entry.Preview.
const previewLength = 50

// Entry is a single journal record owned by exactly one account.
type Entry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preview returns the first 50 runes of the content, with an ellipsis when truncated.
func (e *Entry) Preview() string {
	if utf8.RuneCountInString(e.Content) <= previewLength {
		return e.Content
	}
	runes := []rune(e.Content)
	return string(runes[:previewLength]) + "..."
}
