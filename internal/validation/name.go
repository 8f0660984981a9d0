package validation

import (
	"errors"
	"strings"
)

// ValidateName validates a user's display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateBookText checks a required free-text book field such as title or genre
func ValidateBookText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return errors.New(field + " is required")
	}

	if len(trimmed) > max {
		return errors.New(field + " is too long")
	}

	return nil
}
