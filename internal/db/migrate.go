package db

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"relief-grid-go/internal/domain/announcement"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/discussion"
	"relief-grid-go/internal/domain/donation"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/volunteer"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20240901_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&area.DisasterArea{},
					&grid.Grid{},
					&grid.SupplyLine{},
					&volunteer.Registration{},
					&donation.Donation{},
					&discussion.Discussion{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"grid_discussions", "supply_donations", "volunteer_registrations",
					"grid_supply_lines", "grids", "disaster_areas",
				)
			},
		},
		{
			ID: "20240901_grid_code_unique_lower",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_grids_code_lower ON grids (lower(code))").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_grids_code_lower").Error
			},
		},
		{
			ID: "20240905_create_announcements",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&announcement.Announcement{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("announcements")
			},
		},
	}
}

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
