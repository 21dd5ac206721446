package announcement

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

type Category string

const (
	CategorySafety    Category = "safety"
	CategoryEquipment Category = "equipment"
	CategoryCenter    Category = "center"
	CategoryFood      Category = "food"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySafety, CategoryEquipment, CategoryCenter, CategoryFood, CategoryOther:
		return true
	}
	return false
}

type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Announcement struct {
	ID            string                    `gorm:"type:uuid;primaryKey"`
	Title         string                    `gorm:"size:200;not null"`
	Content       string                    `gorm:"not null"`
	Category      Category                  `gorm:"type:varchar(16);not null"`
	IsPinned      bool                      `gorm:"not null;default:false"`
	SortOrder     int                       `gorm:"not null;default:0"`
	ExternalLinks datatypes.JSONSlice[Link] `gorm:"not null"`
	ContactPhone  string                    `gorm:"size:64;not null;default:''"`
	CreatedBy     *string                   `gorm:"column:created_by"`
	CreatedAt     time.Time                 `gorm:"autoCreateTime"`
	UpdatedAt     time.Time                 `gorm:"autoUpdateTime"`
}

func (Announcement) TableName() string {
	return "announcements"
}

type Input struct {
	Title         string
	Content       string
	Category      Category
	IsPinned      bool
	SortOrder     int
	ExternalLinks []Link
	ContactPhone  string
}
