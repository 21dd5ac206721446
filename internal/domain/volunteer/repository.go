package volunteer

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateRegistration(ctx context.Context, registration *Registration) error
	GetRegistration(ctx context.Context, id string) (*Registration, error)
	ListRegistrations(ctx context.Context, filter ListFilter) ([]Registration, error)
	// UpdateStatus changes the status only while it still equals from and
	// reports whether a row changed.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// AdjustVolunteerRegistered adds delta to the grid counter in place,
	// never going below zero.
	AdjustVolunteerRegistered(ctx context.Context, gridID string, delta int) error
}
