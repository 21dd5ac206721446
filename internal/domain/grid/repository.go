package grid

import (
	"context"

	"relief-grid-go/internal/domain/geo"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetGrid(ctx context.Context, id string) (*Grid, error)
	ListGrids(ctx context.Context, filter ListFilter) ([]Grid, error)
	IsCodeTaken(ctx context.Context, code, excludeID string) (bool, error)
	CreateGrid(ctx context.Context, grid *Grid) error
	UpdateGrid(ctx context.Context, grid *Grid, expectedVersion int64) error
	ReplaceSupplyLines(ctx context.Context, gridID string, lines []SupplyLine) error
	DeleteGrid(ctx context.Context, id string) (bool, error)
	DeleteSupplyLines(ctx context.Context, gridID string) (int64, error)
	DeleteDependents(ctx context.Context, dependent Dependent, gridID string) (int64, error)
	NextSupplyPosition(ctx context.Context, gridID string) (int, error)
	AddSupplyDemand(ctx context.Context, line *SupplyLine) error
	GetSupplyLine(ctx context.Context, gridID, name string) (*SupplyLine, error)
	IncrementSupplyReceived(ctx context.Context, gridID, name string, delta float64) error
	SetSupplyReceived(ctx context.Context, gridID, name string, received float64) error
	SetVolunteerRegistered(ctx context.Context, gridID string, count int) error
	UpdateBounds(ctx context.Context, gridID string, bounds geo.Bounds) error
	CountGrids(ctx context.Context) (int64, error)
	CountAreas(ctx context.Context) (int64, error)
	CountRegistrations(ctx context.Context) (int64, error)
	CountDonations(ctx context.Context) (int64, error)
}

// Locker serializes mutations of one grid.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
