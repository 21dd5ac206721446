package discussion

import (
	"context"

	"gorm.io/gorm"

	discussiondomain "relief-grid-go/internal/domain/discussion"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateDiscussion(ctx context.Context, discussion *discussiondomain.Discussion) error {
	return r.db.WithContext(ctx).Create(discussion).Error
}

func (r *PostgresRepository) ListDiscussions(ctx context.Context, gridID string, limit int) ([]discussiondomain.Discussion, error) {
	query := r.db.WithContext(ctx).
		Where("grid_id = ?", gridID).
		Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var discussions []discussiondomain.Discussion
	if err := query.Find(&discussions).Error; err != nil {
		return nil, err
	}
	return discussions, nil
}
