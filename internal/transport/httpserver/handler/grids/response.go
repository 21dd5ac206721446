package grids

import (
	"time"

	"relief-grid-go/internal/domain/geo"
	griddomain "relief-grid-go/internal/domain/grid"
)

type gridResponse struct {
	ID                  string               `json:"id"`
	Code                string               `json:"code"`
	DisasterAreaID      *string              `json:"disaster_area_id"`
	GridManagerID       *string              `json:"grid_manager_id"`
	GridType            griddomain.Type      `json:"grid_type"`
	Status              griddomain.Status    `json:"status"`
	Center              geo.Coordinate       `json:"center"`
	Bounds              geo.Bounds           `json:"bounds"`
	VolunteerNeeded     int                  `json:"volunteer_needed"`
	VolunteerRegistered int                  `json:"volunteer_registered"`
	Urgency             griddomain.Bucket    `json:"urgency"`
	MeetingPoint        string               `json:"meeting_point"`
	RiskNotes           string               `json:"risk_notes"`
	ContactInfo         string               `json:"contact_info"`
	SupplyLines         []supplyLineResponse `json:"supplies_needed"`
	Version             int64                `json:"version"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type supplyLineResponse struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Received    float64 `json:"received"`
	Remaining   float64 `json:"remaining"`
	Fulfillment float64 `json:"fulfillment"`
	Unit        string  `json:"unit"`
}

func toGridResponse(g griddomain.Grid) gridResponse {
	lines := make([]supplyLineResponse, 0, len(g.SupplyLines))
	for _, line := range g.SupplyLines {
		lines = append(lines, toSupplyLineResponse(line))
	}
	return gridResponse{
		ID:                  g.ID,
		Code:                g.Code,
		DisasterAreaID:      g.DisasterAreaID,
		GridManagerID:       g.GridManagerID,
		GridType:            g.GridType,
		Status:              g.Status,
		Center:              g.Center(),
		Bounds:              g.Bounds(),
		VolunteerNeeded:     g.VolunteerNeeded,
		VolunteerRegistered: g.VolunteerRegistered,
		Urgency:             griddomain.UrgencyOf(g),
		MeetingPoint:        g.MeetingPoint,
		RiskNotes:           g.RiskNotes,
		ContactInfo:         g.ContactInfo,
		SupplyLines:         lines,
		Version:             g.Version,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
	}
}

func toGridResponses(grids []griddomain.Grid) []gridResponse {
	response := make([]gridResponse, 0, len(grids))
	for _, g := range grids {
		response = append(response, toGridResponse(g))
	}
	return response
}

func toSupplyLineResponse(line griddomain.SupplyLine) supplyLineResponse {
	return supplyLineResponse{
		Name:        line.Name,
		Quantity:    line.Quantity,
		Received:    line.Received,
		Remaining:   griddomain.Remaining(line),
		Fulfillment: griddomain.FulfillmentRatio(line),
		Unit:        line.Unit,
	}
}
