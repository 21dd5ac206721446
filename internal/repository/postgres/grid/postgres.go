package grid

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	areadomain "relief-grid-go/internal/domain/area"
	discussiondomain "relief-grid-go/internal/domain/discussion"
	donationdomain "relief-grid-go/internal/domain/donation"
	"relief-grid-go/internal/domain/geo"
	griddomain "relief-grid-go/internal/domain/grid"
	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/internal/repository/postgres/shared"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(griddomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetGrid(ctx context.Context, id string) (*griddomain.Grid, error) {
	if !shared.ValidID(id) {
		return nil, griddomain.ErrGridNotFound
	}
	var g griddomain.Grid
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, griddomain.ErrGridNotFound
		}
		return nil, err
	}

	var lines []griddomain.SupplyLine
	if err := r.db.WithContext(ctx).
		Where("grid_id = ?", id).
		Order("position asc, created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	g.SupplyLines = lines
	return &g, nil
}

func (r *PostgresRepository) ListGrids(ctx context.Context, filter griddomain.ListFilter) ([]griddomain.Grid, error) {
	query := r.db.WithContext(ctx).Model(&griddomain.Grid{})
	if filter.DisasterAreaID != "" {
		query = query.Where("disaster_area_id = ?", filter.DisasterAreaID)
	}
	if filter.GridType != "" {
		query = query.Where("grid_type = ?", filter.GridType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var grids []griddomain.Grid
	if err := query.Order("created_at asc, id asc").Find(&grids).Error; err != nil {
		return nil, err
	}
	if len(grids) == 0 {
		return grids, nil
	}

	ids := make([]string, len(grids))
	for i := range grids {
		ids[i] = grids[i].ID
	}
	var lines []griddomain.SupplyLine
	if err := r.db.WithContext(ctx).
		Where("grid_id IN ?", ids).
		Order("position asc, created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	byGrid := make(map[string][]griddomain.SupplyLine, len(grids))
	for _, line := range lines {
		byGrid[line.GridID] = append(byGrid[line.GridID], line)
	}
	for i := range grids {
		grids[i].SupplyLines = byGrid[grids[i].ID]
	}
	return grids, nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&griddomain.Grid{}).Where("lower(code) = lower(?)", code)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) CreateGrid(ctx context.Context, g *griddomain.Grid) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return mapWriteError(err, g.Code)
	}
	if len(g.SupplyLines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&g.SupplyLines).Error
}

func (r *PostgresRepository) UpdateGrid(ctx context.Context, g *griddomain.Grid, expectedVersion int64) error {
	result := r.db.WithContext(ctx).
		Model(&griddomain.Grid{}).
		Where("id = ? AND version = ?", g.ID, expectedVersion).
		Updates(map[string]interface{}{
			"code":                 g.Code,
			"disaster_area_id":     g.DisasterAreaID,
			"grid_manager_id":      g.GridManagerID,
			"grid_type":            g.GridType,
			"status":               g.Status,
			"center_lat":           g.CenterLat,
			"center_lng":           g.CenterLng,
			"bounds_north":         g.BoundsNorth,
			"bounds_south":         g.BoundsSouth,
			"bounds_east":          g.BoundsEast,
			"bounds_west":          g.BoundsWest,
			"volunteer_needed":     g.VolunteerNeeded,
			"volunteer_registered": g.VolunteerRegistered,
			"meeting_point":        g.MeetingPoint,
			"risk_notes":           g.RiskNotes,
			"contact_info":         g.ContactInfo,
			"version":              expectedVersion + 1,
		})
	if result.Error != nil {
		return mapWriteError(result.Error, g.Code)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetGrid(ctx, g.ID); err != nil {
			return err
		}
		return griddomain.ErrVersionConflict
	}
	g.Version = expectedVersion + 1
	return nil
}

func (r *PostgresRepository) ReplaceSupplyLines(ctx context.Context, gridID string, lines []griddomain.SupplyLine) error {
	if err := r.db.WithContext(ctx).
		Where("grid_id = ?", gridID).
		Delete(&griddomain.SupplyLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *PostgresRepository) DeleteGrid(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&griddomain.Grid{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) DeleteSupplyLines(ctx context.Context, gridID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("grid_id = ?", gridID).Delete(&griddomain.SupplyLine{})
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) DeleteDependents(ctx context.Context, dependent griddomain.Dependent, gridID string) (int64, error) {
	var model interface{}
	switch dependent {
	case griddomain.DependentRegistrations:
		model = &volunteerdomain.Registration{}
	case griddomain.DependentDonations:
		model = &donationdomain.Donation{}
	case griddomain.DependentDiscussions:
		model = &discussiondomain.Discussion{}
	default:
		return 0, fmt.Errorf("unknown grid dependent %q", dependent)
	}
	result := r.db.WithContext(ctx).Where("grid_id = ?", gridID).Delete(model)
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) NextSupplyPosition(ctx context.Context, gridID string) (int, error) {
	var max sql.NullInt64
	if err := r.db.WithContext(ctx).
		Model(&griddomain.SupplyLine{}).
		Select("MAX(position)").
		Where("grid_id = ?", gridID).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// AddSupplyDemand inserts the line or adds its quantity to the existing line
// of the same name.
func (r *PostgresRepository) AddSupplyDemand(ctx context.Context, line *griddomain.SupplyLine) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "grid_id"}, {Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("grid_supply_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(line).Error
	if err != nil {
		return err
	}
	return shared.BumpGridVersion(ctx, r.db, line.GridID)
}

func (r *PostgresRepository) GetSupplyLine(ctx context.Context, gridID, name string) (*griddomain.SupplyLine, error) {
	var line griddomain.SupplyLine
	if err := r.db.WithContext(ctx).
		Where("grid_id = ? AND name = ?", gridID, name).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, griddomain.ErrUnknownSupplyLine
		}
		return nil, err
	}
	return &line, nil
}

func (r *PostgresRepository) IncrementSupplyReceived(ctx context.Context, gridID, name string, delta float64) error {
	return shared.IncrementSupplyReceived(ctx, r.db, gridID, name, delta)
}

func (r *PostgresRepository) SetSupplyReceived(ctx context.Context, gridID, name string, received float64) error {
	result := r.db.WithContext(ctx).
		Model(&griddomain.SupplyLine{}).
		Where("grid_id = ? AND name = ?", gridID, name).
		Update("received", received)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return griddomain.ErrUnknownSupplyLine
	}
	return shared.BumpGridVersion(ctx, r.db, gridID)
}

func (r *PostgresRepository) SetVolunteerRegistered(ctx context.Context, gridID string, count int) error {
	return r.updateGridColumns(ctx, gridID, map[string]interface{}{
		"volunteer_registered": count,
	})
}

func (r *PostgresRepository) UpdateBounds(ctx context.Context, gridID string, bounds geo.Bounds) error {
	return r.updateGridColumns(ctx, gridID, map[string]interface{}{
		"bounds_north": bounds.North,
		"bounds_south": bounds.South,
		"bounds_east":  bounds.East,
		"bounds_west":  bounds.West,
	})
}

func (r *PostgresRepository) updateGridColumns(ctx context.Context, gridID string, values map[string]interface{}) error {
	values["version"] = gorm.Expr("version + 1")
	result := r.db.WithContext(ctx).
		Model(&griddomain.Grid{}).
		Where("id = ?", gridID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return griddomain.ErrGridNotFound
	}
	return nil
}

func (r *PostgresRepository) CountGrids(ctx context.Context) (int64, error) {
	return r.count(ctx, &griddomain.Grid{})
}

func (r *PostgresRepository) CountAreas(ctx context.Context) (int64, error) {
	return r.count(ctx, &areadomain.DisasterArea{})
}

func (r *PostgresRepository) CountRegistrations(ctx context.Context) (int64, error) {
	return r.count(ctx, &volunteerdomain.Registration{})
}

func (r *PostgresRepository) CountDonations(ctx context.Context) (int64, error) {
	return r.count(ctx, &donationdomain.Donation{})
}

func (r *PostgresRepository) count(ctx context.Context, model interface{}) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Count(&count).Error
	return count, err
}

func mapWriteError(err error, code string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", griddomain.ErrDuplicateCode, code)
	}
	return err
}
