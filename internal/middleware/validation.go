package middleware

import (
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxEntryLength is the default byte limit for entry content.
const DefaultMaxEntryLength = 100000

// Validation errors.
var (
	ErrContentEmpty   = errors.New("entry content is empty")
	ErrContentTooLong = errors.New("entry content exceeds maximum length")
	ErrEntryIDInvalid = errors.New("entry id is invalid")
)

// ValidateEntryContent checks submitted entry text and returns it trimmed.
// maxBytes <= 0 means DefaultMaxEntryLength.
func ValidateEntryContent(content string, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxEntryLength
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrContentEmpty
	}
	if len(trimmed) > maxBytes {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// ValidateEntryID checks that id is a well-formed ULID.
func ValidateEntryID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return ErrEntryIDInvalid
	}
	return nil
}
