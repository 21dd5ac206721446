package announcement

import (
	"context"
	"errors"

	"gorm.io/gorm"

	announcementdomain "relief-grid-go/internal/domain/announcement"
	"relief-grid-go/internal/repository/postgres/shared"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateAnnouncement(ctx context.Context, announcement *announcementdomain.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *PostgresRepository) GetAnnouncement(ctx context.Context, id string) (*announcementdomain.Announcement, error) {
	if !shared.ValidID(id) {
		return nil, announcementdomain.ErrAnnouncementNotFound
	}
	var announcement announcementdomain.Announcement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&announcement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, announcementdomain.ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// ListAnnouncements returns rows unordered; the service applies display order.
func (r *PostgresRepository) ListAnnouncements(ctx context.Context) ([]announcementdomain.Announcement, error) {
	var announcements []announcementdomain.Announcement
	if err := r.db.WithContext(ctx).Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *PostgresRepository) UpdateAnnouncement(ctx context.Context, announcement *announcementdomain.Announcement) error {
	result := r.db.WithContext(ctx).
		Model(&announcementdomain.Announcement{}).
		Where("id = ?", announcement.ID).
		Updates(map[string]interface{}{
			"title":          announcement.Title,
			"content":        announcement.Content,
			"category":       announcement.Category,
			"is_pinned":      announcement.IsPinned,
			"sort_order":     announcement.SortOrder,
			"external_links": announcement.ExternalLinks,
			"contact_phone":  announcement.ContactPhone,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return announcementdomain.ErrAnnouncementNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAnnouncement(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&announcementdomain.Announcement{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
