package volunteer

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusArrived   Status = "arrived"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusArrived, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Registration struct {
	ID             string                      `gorm:"type:uuid;primaryKey"`
	GridID         string                      `gorm:"type:uuid;not null;index"`
	VolunteerName  string                      `gorm:"size:128;not null"`
	VolunteerPhone string                      `gorm:"size:64;not null;default:''"`
	VolunteerEmail string                      `gorm:"size:128;not null;default:''"`
	AvailableTime  string                      `gorm:"size:128;not null;default:''"`
	Skills         datatypes.JSONSlice[string] `gorm:"not null"`
	Equipment      datatypes.JSONSlice[string] `gorm:"not null"`
	Notes          string                      `gorm:"not null;default:''"`
	Status         Status                      `gorm:"type:varchar(16);not null;index"`
	CreatedBy      *string                     `gorm:"column:created_by"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
}

func (Registration) TableName() string {
	return "volunteer_registrations"
}

type RegisterInput struct {
	VolunteerName  string
	VolunteerPhone string
	VolunteerEmail string
	AvailableTime  string
	Skills         []string
	Equipment      []string
	Notes          string
}

type ListFilter struct {
	GridID string
	Status Status
}
