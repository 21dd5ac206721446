package grids

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"relief-grid-go/internal/domain/geo"
	griddomain "relief-grid-go/internal/domain/grid"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type supplyLineRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Received float64 `json:"received"`
	Unit     string  `json:"unit"`
}

type createGridRequest struct {
	Code                string              `json:"code"`
	GridType            string              `json:"grid_type"`
	Status              string              `json:"status"`
	DisasterAreaID      *string             `json:"disaster_area_id"`
	Center              *geo.Coordinate     `json:"center"`
	Bounds              *geo.Bounds         `json:"bounds"`
	VolunteerNeeded     int                 `json:"volunteer_needed"`
	VolunteerRegistered int                 `json:"volunteer_registered"`
	MeetingPoint        string              `json:"meeting_point"`
	RiskNotes           string              `json:"risk_notes"`
	ContactInfo         string              `json:"contact_info"`
	SuppliesNeeded      []supplyLineRequest `json:"supplies_needed"`
}

type updateGridRequest struct {
	Code                string               `json:"code"`
	GridType            string               `json:"grid_type"`
	Status              string               `json:"status"`
	DisasterAreaID      *string              `json:"disaster_area_id"`
	GridManagerID       *string              `json:"grid_manager_id"`
	Center              *geo.Coordinate      `json:"center"`
	Bounds              *geo.Bounds          `json:"bounds"`
	VolunteerNeeded     int                  `json:"volunteer_needed"`
	VolunteerRegistered int                  `json:"volunteer_registered"`
	MeetingPoint        string               `json:"meeting_point"`
	RiskNotes           string               `json:"risk_notes"`
	ContactInfo         string               `json:"contact_info"`
	SuppliesNeeded      *[]supplyLineRequest `json:"supplies_needed"`
	Version             int64                `json:"version"`
}

func (h *Handlers) ListGrids(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()
	filter := griddomain.ListFilter{
		DisasterAreaID: strings.TrimSpace(query.Get("disaster_area_id")),
		GridType:       griddomain.Type(strings.TrimSpace(query.Get("grid_type"))),
		Status:         griddomain.Status(strings.TrimSpace(query.Get("status"))),
	}

	grids, err := h.Grids.ListGrids(r.Context(), actor, filter)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.list", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponses(grids))
}

func (h *Handlers) GetGrid(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	g, err := h.Grids.GetGrid(r.Context(), actor, id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.get", err, "grid_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponse(*g))
}

func (h *Handlers) CreateGrid(w http.ResponseWriter, r *http.Request) {
	var req createGridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	g, err := h.Grids.CreateGrid(r.Context(), actor, griddomain.CreateGridInput{
		Code:                req.Code,
		GridType:            griddomain.Type(strings.TrimSpace(req.GridType)),
		Status:              griddomain.Status(strings.TrimSpace(req.Status)),
		DisasterAreaID:      req.DisasterAreaID,
		Center:              req.Center,
		Bounds:              req.Bounds,
		VolunteerNeeded:     req.VolunteerNeeded,
		VolunteerRegistered: req.VolunteerRegistered,
		MeetingPoint:        req.MeetingPoint,
		RiskNotes:           req.RiskNotes,
		ContactInfo:         req.ContactInfo,
		Supplies:            toSupplyLineInputs(req.SuppliesNeeded),
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.create", err, "actor_id", actor.ID, "code", req.Code)
		return
	}

	h.log.Info("grids.create: grid created", "grid_id", g.ID, "code", g.Code, "actor_id", actor.ID)
	writeJSON(w, http.StatusCreated, toGridResponse(griddomain.Redacted(actor, *g)))
}

func (h *Handlers) UpdateGrid(w http.ResponseWriter, r *http.Request) {
	var req updateGridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}
	if req.Center == nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "center is required")
		return
	}
	if req.Version <= 0 {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "version is required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	input := griddomain.UpdateGridInput{
		Code:                req.Code,
		GridType:            griddomain.Type(strings.TrimSpace(req.GridType)),
		Status:              griddomain.Status(strings.TrimSpace(req.Status)),
		DisasterAreaID:      req.DisasterAreaID,
		GridManagerID:       req.GridManagerID,
		Center:              *req.Center,
		Bounds:              req.Bounds,
		VolunteerNeeded:     req.VolunteerNeeded,
		VolunteerRegistered: req.VolunteerRegistered,
		MeetingPoint:        req.MeetingPoint,
		RiskNotes:           req.RiskNotes,
		ContactInfo:         req.ContactInfo,
		ExpectedVersion:     req.Version,
	}
	if req.SuppliesNeeded != nil {
		input.Supplies = toSupplyLineInputs(*req.SuppliesNeeded)
		if input.Supplies == nil {
			input.Supplies = []griddomain.SupplyLineInput{}
		}
	}

	g, err := h.Grids.UpdateGrid(r.Context(), actor, id, input)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.update", err, "grid_id", id, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponse(*g))
}

func (h *Handlers) DeleteGrid(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	result, err := h.Grids.DeleteGrid(r.Context(), actor, id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.delete", err, "grid_id", id, "actor_id", actor.ID)
		return
	}

	h.log.Info("grids.delete: grid deleted", "grid_id", id, "registrations", result.Registrations,
		"donations", result.Donations, "discussions", result.Discussions)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) FixBounds(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	fixed, err := h.Grids.FixBounds(r.Context(), actor)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.fix_bounds", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"fixed": fixed})
}

func toSupplyLineInputs(lines []supplyLineRequest) []griddomain.SupplyLineInput {
	if len(lines) == 0 {
		return nil
	}
	inputs := make([]griddomain.SupplyLineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, griddomain.SupplyLineInput{
			Name:     line.Name,
			Quantity: line.Quantity,
			Received: line.Received,
			Unit:     line.Unit,
		})
	}
	return inputs
}
