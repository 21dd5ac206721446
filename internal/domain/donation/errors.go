package donation

import "errors"

var (
	ErrDonationNotFound  = errors.New("donation not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)
