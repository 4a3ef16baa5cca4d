package registry

import "errors"

var (
	// ErrActivityNotFound is returned when the activity name is not in the registry
	ErrActivityNotFound = errors.New("activity not found")
	// ErrParticipantNotFound is returned when unregistering an email that is not enrolled
	ErrParticipantNotFound = errors.New("participant not found in activity")
	// ErrAlreadySignedUp is returned when the email is already enrolled in the activity
	ErrAlreadySignedUp = errors.New("student already signed up")
	// ErrActivityFull is returned when the activity has reached its capacity
	ErrActivityFull = errors.New("activity is full")
	// ErrInvalidEmail is returned when the email is not a valid address
	ErrInvalidEmail = errors.New("invalid email address")
)
