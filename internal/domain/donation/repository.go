package donation

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateDonation(ctx context.Context, donation *Donation) error
	GetDonation(ctx context.Context, id string) (*Donation, error)
	ListDonations(ctx context.Context, filter ListFilter) ([]Donation, error)
	// UpdateStatus changes the status only while it still equals from.
	// applied is written together with the status.
	UpdateStatus(ctx context.Context, id string, from, to Status, applied bool) (bool, error)
	// IncrementSupplyReceived adds quantity to the named line in place and
	// fails with grid.ErrUnknownSupplyLine when it does not exist.
	IncrementSupplyReceived(ctx context.Context, gridID, supplyName string, quantity float64) error
}
