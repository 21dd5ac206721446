package grid

import (
	"time"

	"relief-grid-go/internal/domain/geo"
)

type Type string

const (
	TypeManpower      Type = "manpower"
	TypeMudDisposal   Type = "mud_disposal"
	TypeSupplyStorage Type = "supply_storage"
	TypeAccommodation Type = "accommodation"
	TypeFoodArea      Type = "food_area"
)

func (t Type) Valid() bool {
	switch t {
	case TypeManpower, TypeMudDisposal, TypeSupplyStorage, TypeAccommodation, TypeFoodArea:
		return true
	}
	return false
}

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPreparing, StatusOpen, StatusClosed, StatusCompleted:
		return true
	}
	return false
}

type Grid struct {
	ID                  string    `gorm:"type:uuid;primaryKey"`
	Code                string    `gorm:"size:64;not null"`
	DisasterAreaID      *string   `gorm:"type:uuid;index"`
	GridManagerID       *string   `gorm:"index"`
	GridType            Type      `gorm:"type:varchar(32);not null;index"`
	Status              Status    `gorm:"type:varchar(16);not null;index"`
	CenterLat           float64   `gorm:"not null"`
	CenterLng           float64   `gorm:"not null"`
	BoundsNorth         float64   `gorm:"not null"`
	BoundsSouth         float64   `gorm:"not null"`
	BoundsEast          float64   `gorm:"not null"`
	BoundsWest          float64   `gorm:"not null"`
	VolunteerNeeded     int       `gorm:"not null;default:0"`
	VolunteerRegistered int       `gorm:"not null;default:0"`
	MeetingPoint        string    `gorm:"not null;default:''"`
	RiskNotes           string    `gorm:"not null;default:''"`
	ContactInfo         string    `gorm:"not null;default:''"`
	Version             int64     `gorm:"not null;default:1"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`

	SupplyLines []SupplyLine `gorm:"-"`
}

func (Grid) TableName() string {
	return "grids"
}

func (g *Grid) Center() geo.Coordinate {
	return geo.Coordinate{Lat: g.CenterLat, Lng: g.CenterLng}
}

func (g *Grid) Bounds() geo.Bounds {
	return geo.Bounds{North: g.BoundsNorth, South: g.BoundsSouth, East: g.BoundsEast, West: g.BoundsWest}
}

func (g *Grid) SetCenter(center geo.Coordinate) {
	g.CenterLat = center.Lat
	g.CenterLng = center.Lng
}

func (g *Grid) SetBounds(bounds geo.Bounds) {
	g.BoundsNorth = bounds.North
	g.BoundsSouth = bounds.South
	g.BoundsEast = bounds.East
	g.BoundsWest = bounds.West
}

// SupplyLine returns the line named name, matched exactly.
func (g *Grid) SupplyLine(name string) (*SupplyLine, bool) {
	for i := range g.SupplyLines {
		if g.SupplyLines[i].Name == name {
			return &g.SupplyLines[i], true
		}
	}
	return nil, false
}

type SupplyLine struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	GridID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_supply_lines_grid_name,priority:1"`
	Name      string    `gorm:"size:128;not null;uniqueIndex:idx_supply_lines_grid_name,priority:2"`
	Position  int       `gorm:"not null"`
	Quantity  float64   `gorm:"not null;default:0"`
	Received  float64   `gorm:"not null;default:0"`
	Unit      string    `gorm:"size:32;not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SupplyLine) TableName() string {
	return "grid_supply_lines"
}

// SupplyItem is one demand entry of a supply request.
type SupplyItem struct {
	Name     string
	Quantity float64
	Unit     string
}

type CreateGridInput struct {
	Code                string
	GridType            Type
	Status              Status
	DisasterAreaID      *string
	Center              *geo.Coordinate
	Bounds              *geo.Bounds
	VolunteerNeeded     int
	VolunteerRegistered int
	MeetingPoint        string
	RiskNotes           string
	ContactInfo         string
	Supplies            []SupplyLineInput
}

// withoutProgress drops the fields that only registrations, donations and
// admin edits may move. A new grid starts preparing or open.
func (in CreateGridInput) withoutProgress() CreateGridInput {
	in.VolunteerRegistered = 0
	if in.Status != StatusPreparing {
		in.Status = StatusOpen
	}
	if in.Supplies != nil {
		supplies := make([]SupplyLineInput, len(in.Supplies))
		for i, line := range in.Supplies {
			line.Received = 0
			supplies[i] = line
		}
		in.Supplies = supplies
	}
	return in
}

// SupplyLineInput carries a full line on create and administrative edit,
// including the received quantity.
type SupplyLineInput struct {
	Name     string
	Quantity float64
	Received float64
	Unit     string
}

// UpdateGridInput is a full administrative edit. Supplies replaces the line
// list when non-nil.
type UpdateGridInput struct {
	Code                string
	GridType            Type
	Status              Status
	DisasterAreaID      *string
	GridManagerID       *string
	Center              geo.Coordinate
	Bounds              *geo.Bounds
	VolunteerNeeded     int
	VolunteerRegistered int
	MeetingPoint        string
	RiskNotes           string
	ContactInfo         string
	Supplies            []SupplyLineInput
	ExpectedVersion     int64
}

type ListFilter struct {
	DisasterAreaID string
	GridType       Type
	Status         Status
}

type Dependent string

const (
	DependentRegistrations Dependent = "volunteer_registrations"
	DependentDonations     Dependent = "supply_donations"
	DependentDiscussions   Dependent = "grid_discussions"
)

// DeleteResult reports the explicit fan-out performed by DeleteGrid.
type DeleteResult struct {
	Registrations int64 `json:"registrations"`
	Donations     int64 `json:"donations"`
	Discussions   int64 `json:"discussions"`
	SupplyLines   int64 `json:"supply_lines"`
}

// UnfulfilledSupply is one row of the donor-facing feed.
type UnfulfilledSupply struct {
	GridID    string  `json:"grid_id"`
	GridCode  string  `json:"grid_code"`
	GridType  Type    `json:"grid_type"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Received  float64 `json:"received"`
	Remaining float64 `json:"remaining"`
	Unit      string  `json:"unit"`
}

type Stats struct {
	Areas         int64 `json:"areas"`
	Grids         int64 `json:"grids"`
	Registrations int64 `json:"registrations"`
	Donations     int64 `json:"donations"`
	UrgentGrids   int   `json:"urgent_grids"`
}
