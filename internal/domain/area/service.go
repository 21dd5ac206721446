package area

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/geo"
	"relief-grid-go/internal/domain/validation"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateArea(ctx context.Context, actor access.Actor, input CreateAreaInput) (*DisasterArea, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	center, bounds, err := resolveGeometry(input.Center, input.Bounds)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation.Required("name")
	}

	area := DisasterArea{
		ID:          uuid.NewString(),
		Name:        name,
		County:      strings.TrimSpace(input.County),
		Township:    strings.TrimSpace(input.Township),
		Description: strings.TrimSpace(input.Description),
		Status:      StatusActive,
		CreatedBy:   actor.ActorID(),
	}
	area.setGeometry(center, bounds)

	if err := s.repo.CreateArea(ctx, &area); err != nil {
		return nil, err
	}
	return &area, nil
}

func (s *Service) GetArea(ctx context.Context, id string) (*DisasterArea, error) {
	return s.repo.GetArea(ctx, id)
}

func (s *Service) ListAreas(ctx context.Context, filter ListFilter) ([]DisasterArea, error) {
	if filter.Status != "" && filter.Status != StatusActive && filter.Status != StatusArchived {
		return nil, validation.New("status", "must be active or archived")
	}
	return s.repo.ListAreas(ctx, filter)
}

// UpdateArea replaces the editable fields. Bounds are re-derived from the
// center unless supplied.
func (s *Service) UpdateArea(ctx context.Context, actor access.Actor, id string, input UpdateAreaInput) (*DisasterArea, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation.Required("name")
	}
	status := input.Status
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusArchived {
		return nil, validation.New("status", "must be active or archived")
	}
	center, bounds, err := resolveGeometry(input.Center, input.Bounds)
	if err != nil {
		return nil, err
	}

	area, err := s.repo.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}

	area.Name = name
	area.County = strings.TrimSpace(input.County)
	area.Township = strings.TrimSpace(input.Township)
	area.Description = strings.TrimSpace(input.Description)
	area.Status = status
	area.setGeometry(center, bounds)

	if err := s.repo.UpdateArea(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// DeleteArea hard-deletes the area and reports the grids left referencing it.
func (s *Service) DeleteArea(ctx context.Context, actor access.Actor, id string) (DeleteResult, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return DeleteResult{}, err
	}

	orphaned, err := s.repo.CountGridsByArea(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}

	deleted, err := s.repo.DeleteArea(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if !deleted {
		return DeleteResult{}, ErrAreaNotFound
	}
	return DeleteResult{OrphanedGrids: orphaned}, nil
}

func resolveGeometry(center geo.Coordinate, bounds *geo.Bounds) (geo.Coordinate, geo.Bounds, error) {
	if err := center.Validate("center"); err != nil {
		return geo.Coordinate{}, geo.Bounds{}, err
	}
	if bounds == nil {
		return center, geo.DeriveBounds(center, geo.AreaHalfWidth), nil
	}
	if err := bounds.Validate("bounds"); err != nil {
		return geo.Coordinate{}, geo.Bounds{}, err
	}
	return center, *bounds, nil
}
