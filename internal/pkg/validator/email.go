package validator

import (
	"errors"
	"strings"
)

// ValidateEmail performs a minimal structural check. Signup is open to any
// provider, so there is no domain blocklist or MX lookup here.
func ValidateEmail(email string) error {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("invalid email format")
	}

	if !strings.Contains(parts[1], ".") {
		return errors.New("invalid email domain")
	}

	return nil
}
