package volunteer

import (
	"context"
	"errors"

	"gorm.io/gorm"

	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/internal/repository/postgres/shared"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(volunteerdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateRegistration(ctx context.Context, registration *volunteerdomain.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *PostgresRepository) GetRegistration(ctx context.Context, id string) (*volunteerdomain.Registration, error) {
	if !shared.ValidID(id) {
		return nil, volunteerdomain.ErrRegistrationNotFound
	}
	var registration volunteerdomain.Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, volunteerdomain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &registration, nil
}

func (r *PostgresRepository) ListRegistrations(ctx context.Context, filter volunteerdomain.ListFilter) ([]volunteerdomain.Registration, error) {
	query := r.db.WithContext(ctx).Model(&volunteerdomain.Registration{})
	if filter.GridID != "" {
		query = query.Where("grid_id = ?", filter.GridID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var registrations []volunteerdomain.Registration
	if err := query.Order("created_at desc").Find(&registrations).Error; err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to volunteerdomain.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&volunteerdomain.Registration{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) AdjustVolunteerRegistered(ctx context.Context, gridID string, delta int) error {
	return shared.AdjustVolunteerRegistered(ctx, r.db, gridID, delta)
}
