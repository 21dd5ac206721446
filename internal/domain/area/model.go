package area

import (
	"time"

	"relief-grid-go/internal/domain/geo"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type DisasterArea struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:128;not null"`
	County      string    `gorm:"size:64;not null;default:''"`
	Township    string    `gorm:"size:64;not null;default:''"`
	Description string    `gorm:"not null;default:''"`
	CenterLat   float64   `gorm:"not null"`
	CenterLng   float64   `gorm:"not null"`
	BoundsNorth float64   `gorm:"not null"`
	BoundsSouth float64   `gorm:"not null"`
	BoundsEast  float64   `gorm:"not null"`
	BoundsWest  float64   `gorm:"not null"`
	Status      Status    `gorm:"type:varchar(16);not null;index"`
	CreatedBy   *string   `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (DisasterArea) TableName() string {
	return "disaster_areas"
}

func (a *DisasterArea) Center() geo.Coordinate {
	return geo.Coordinate{Lat: a.CenterLat, Lng: a.CenterLng}
}

func (a *DisasterArea) Bounds() geo.Bounds {
	return geo.Bounds{North: a.BoundsNorth, South: a.BoundsSouth, East: a.BoundsEast, West: a.BoundsWest}
}

func (a *DisasterArea) setGeometry(center geo.Coordinate, bounds geo.Bounds) {
	a.CenterLat = center.Lat
	a.CenterLng = center.Lng
	a.BoundsNorth = bounds.North
	a.BoundsSouth = bounds.South
	a.BoundsEast = bounds.East
	a.BoundsWest = bounds.West
}

type CreateAreaInput struct {
	Name        string
	County      string
	Township    string
	Description string
	Center      geo.Coordinate
	Bounds      *geo.Bounds
}

type UpdateAreaInput struct {
	Name        string
	County      string
	Township    string
	Description string
	Center      geo.Coordinate
	Bounds      *geo.Bounds
	Status      Status
}

type ListFilter struct {
	Status Status
}

// DeleteResult tells the caller how many grids still point at the deleted
// area. Grids are never removed with their area.
type DeleteResult struct {
	OrphanedGrids int64 `json:"orphaned_grids"`
}
