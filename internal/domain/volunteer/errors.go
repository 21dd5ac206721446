package volunteer

import "errors"

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
