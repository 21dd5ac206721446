package area

import "context"

type Repository interface {
	CreateArea(ctx context.Context, area *DisasterArea) error
	GetArea(ctx context.Context, id string) (*DisasterArea, error)
	ListAreas(ctx context.Context, filter ListFilter) ([]DisasterArea, error)
	UpdateArea(ctx context.Context, area *DisasterArea) error
	DeleteArea(ctx context.Context, id string) (bool, error)
	CountGridsByArea(ctx context.Context, id string) (int64, error)
}
