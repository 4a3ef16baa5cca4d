package registry

import (
	"fmt"
	"net/mail"
	"strings"
)

// Policy controls the optional enrollment checks.
type Policy struct {
	// EnforceCapacity rejects signups once max_participants is reached
	EnforceCapacity bool
	// ValidateEmail rejects signups whose email is not a bare address
	ValidateEmail bool
}

// DefaultPolicy enables every check
func DefaultPolicy() Policy {
	return Policy{
		EnforceCapacity: true,
		ValidateEmail:   true,
	}
}

// ValidateEmail checks that email is a bare RFC 5322 address such as
// "student@mergington.edu". Display names and angle brackets are rejected.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if addr.Name != "" || addr.Address != email {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	return nil
}
