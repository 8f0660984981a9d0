package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail validates email format and length.
// Only bare addresses are accepted: "Ada <a@x.com>" parses under RFC 5322
// but is rejected here because the address is stored exactly as given.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}

	return nil
}
