package donation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	donationdomain "relief-grid-go/internal/domain/donation"
	"relief-grid-go/internal/repository/postgres/shared"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(donationdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateDonation(ctx context.Context, donation *donationdomain.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *PostgresRepository) GetDonation(ctx context.Context, id string) (*donationdomain.Donation, error) {
	if !shared.ValidID(id) {
		return nil, donationdomain.ErrDonationNotFound
	}
	var donation donationdomain.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, donationdomain.ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *PostgresRepository) ListDonations(ctx context.Context, filter donationdomain.ListFilter) ([]donationdomain.Donation, error) {
	query := r.db.WithContext(ctx).Model(&donationdomain.Donation{})
	if filter.GridID != "" {
		query = query.Where("grid_id = ?", filter.GridID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var donations []donationdomain.Donation
	if err := query.Order("created_at desc").Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to donationdomain.Status, applied bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&donationdomain.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":  to,
			"applied": applied,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) IncrementSupplyReceived(ctx context.Context, gridID, supplyName string, quantity float64) error {
	return shared.IncrementSupplyReceived(ctx, r.db, gridID, supplyName, quantity)
}
