package donation

import "time"

type Status string

const (
	StatusPledged   Status = "pledged"
	StatusConfirmed Status = "confirmed"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPledged, StatusConfirmed, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryDirect          DeliveryMethod = "direct"
	DeliveryPickupPoint     DeliveryMethod = "pickup_point"
	DeliveryVolunteerPickup DeliveryMethod = "volunteer_pickup"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryDirect, DeliveryPickupPoint, DeliveryVolunteerPickup:
		return true
	}
	return false
}

// Policy decides when a donation's quantity reaches the supply line.
type Policy string

const (
	ApplyOnCreation Policy = "creation"
	ApplyOnDelivery Policy = "delivery"
)

func ParsePolicy(value string) (Policy, bool) {
	switch policy := Policy(value); policy {
	case ApplyOnCreation, ApplyOnDelivery:
		return policy, true
	case "":
		return ApplyOnCreation, true
	default:
		return "", false
	}
}

type Donation struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	GridID          string         `gorm:"type:uuid;not null;index"`
	DonorName       string         `gorm:"size:128;not null"`
	DonorPhone      string         `gorm:"size:64;not null;default:''"`
	DonorEmail      string         `gorm:"size:128;not null;default:''"`
	SupplyName      string         `gorm:"size:128;not null"`
	Quantity        float64        `gorm:"not null"`
	Unit            string         `gorm:"size:32;not null;default:''"`
	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(32);not null"`
	DeliveryAddress string         `gorm:"not null;default:''"`
	DeliveryTime    string         `gorm:"size:128;not null;default:''"`
	Status          Status         `gorm:"type:varchar(16);not null;index"`
	Notes           string         `gorm:"not null;default:''"`
	Applied         bool           `gorm:"not null;default:false"`
	CreatedBy       *string        `gorm:"column:created_by"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (Donation) TableName() string {
	return "supply_donations"
}

type CreateDonationInput struct {
	DonorName       string
	DonorPhone      string
	DonorEmail      string
	SupplyName      string
	Quantity        float64
	Unit            string
	DeliveryMethod  DeliveryMethod
	DeliveryAddress string
	DeliveryTime    string
	Notes           string
}

type ListFilter struct {
	GridID string
	Status Status
}
