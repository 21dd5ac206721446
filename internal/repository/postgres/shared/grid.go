// Package shared holds the in-place grid writes used by more than one
// repository inside their own transactions.
package shared

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	griddomain "relief-grid-go/internal/domain/grid"
)

// ValidID reports whether id can be compared against a uuid column. Lookups
// by a malformed id are answered as not found.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// BumpGridVersion marks the grid aggregate as changed.
func BumpGridVersion(ctx context.Context, db *gorm.DB, gridID string) error {
	result := db.WithContext(ctx).
		Model(&griddomain.Grid{}).
		Where("id = ?", gridID).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return griddomain.ErrGridNotFound
	}
	return nil
}

// IncrementSupplyReceived adds delta to the named line without reading it
// first.
func IncrementSupplyReceived(ctx context.Context, db *gorm.DB, gridID, name string, delta float64) error {
	result := db.WithContext(ctx).
		Model(&griddomain.SupplyLine{}).
		Where("grid_id = ? AND name = ?", gridID, name).
		Update("received", gorm.Expr("received + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return griddomain.ErrUnknownSupplyLine
	}
	return BumpGridVersion(ctx, db, gridID)
}

// AdjustVolunteerRegistered applies delta to the counter, floored at zero.
func AdjustVolunteerRegistered(ctx context.Context, db *gorm.DB, gridID string, delta int) error {
	expr := gorm.Expr("volunteer_registered + ?", delta)
	if delta < 0 {
		expr = gorm.Expr(
			"CASE WHEN volunteer_registered + ? > 0 THEN volunteer_registered + ? ELSE 0 END",
			delta, delta,
		)
	}

	result := db.WithContext(ctx).
		Model(&griddomain.Grid{}).
		Where("id = ?", gridID).
		Updates(map[string]interface{}{
			"volunteer_registered": expr,
			"version":              gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return griddomain.ErrGridNotFound
	}
	return nil
}
