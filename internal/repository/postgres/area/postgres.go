package area

import (
	"context"
	"errors"

	"gorm.io/gorm"

	areadomain "relief-grid-go/internal/domain/area"
	griddomain "relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/repository/postgres/shared"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateArea(ctx context.Context, area *areadomain.DisasterArea) error {
	return r.db.WithContext(ctx).Create(area).Error
}

func (r *PostgresRepository) GetArea(ctx context.Context, id string) (*areadomain.DisasterArea, error) {
	if !shared.ValidID(id) {
		return nil, areadomain.ErrAreaNotFound
	}
	var area areadomain.DisasterArea
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, areadomain.ErrAreaNotFound
		}
		return nil, err
	}
	return &area, nil
}

func (r *PostgresRepository) ListAreas(ctx context.Context, filter areadomain.ListFilter) ([]areadomain.DisasterArea, error) {
	query := r.db.WithContext(ctx).Model(&areadomain.DisasterArea{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var areas []areadomain.DisasterArea
	if err := query.Order("created_at desc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *PostgresRepository) UpdateArea(ctx context.Context, area *areadomain.DisasterArea) error {
	result := r.db.WithContext(ctx).
		Model(&areadomain.DisasterArea{}).
		Where("id = ?", area.ID).
		Updates(map[string]interface{}{
			"name":         area.Name,
			"county":       area.County,
			"township":     area.Township,
			"description":  area.Description,
			"center_lat":   area.CenterLat,
			"center_lng":   area.CenterLng,
			"bounds_north": area.BoundsNorth,
			"bounds_south": area.BoundsSouth,
			"bounds_east":  area.BoundsEast,
			"bounds_west":  area.BoundsWest,
			"status":       area.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return areadomain.ErrAreaNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteArea(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&areadomain.DisasterArea{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountGridsByArea(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&griddomain.Grid{}).
		Where("disaster_area_id = ?", id).
		Count(&count).Error
	return count, err
}
