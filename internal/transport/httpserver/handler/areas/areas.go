package areas

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	areadomain "relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/geo"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type areaRequest struct {
	Name        string          `json:"name"`
	County      string          `json:"county"`
	Township    string          `json:"township"`
	Description string          `json:"description"`
	Center      *geo.Coordinate `json:"center"`
	Bounds      *geo.Bounds     `json:"bounds"`
	Status      string          `json:"status"`
}

type areaResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	County      string            `json:"county"`
	Township    string            `json:"township"`
	Description string            `json:"description"`
	Center      geo.Coordinate    `json:"center"`
	Bounds      geo.Bounds        `json:"bounds"`
	Status      areadomain.Status `json:"status"`
	CreatedBy   *string           `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (h *Handlers) ListAreas(w http.ResponseWriter, r *http.Request) {
	status := areadomain.Status(strings.TrimSpace(r.URL.Query().Get("status")))

	areas, err := h.Areas.ListAreas(r.Context(), areadomain.ListFilter{Status: status})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "areas.list", err)
		return
	}

	response := make([]areaResponse, 0, len(areas))
	for _, area := range areas {
		response = append(response, toAreaResponse(area))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetArea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	area, err := h.Areas.GetArea(r.Context(), id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "areas.get", err, "area_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toAreaResponse(*area))
}

func (h *Handlers) CreateArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}
	if req.Center == nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "center is required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	area, err := h.Areas.CreateArea(r.Context(), actor, areadomain.CreateAreaInput{
		Name:        req.Name,
		County:      req.County,
		Township:    req.Township,
		Description: req.Description,
		Center:      *req.Center,
		Bounds:      req.Bounds,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "areas.create", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toAreaResponse(*area))
}

func (h *Handlers) UpdateArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}
	if req.Center == nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "center is required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	area, err := h.Areas.UpdateArea(r.Context(), actor, id, areadomain.UpdateAreaInput{
		Name:        req.Name,
		County:      req.County,
		Township:    req.Township,
		Description: req.Description,
		Center:      *req.Center,
		Bounds:      req.Bounds,
		Status:      areadomain.Status(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "areas.update", err, "area_id", id, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toAreaResponse(*area))
}

func (h *Handlers) DeleteArea(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	result, err := h.Areas.DeleteArea(r.Context(), actor, id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "areas.delete", err, "area_id", id, "actor_id", actor.ID)
		return
	}
	if result.OrphanedGrids > 0 {
		h.log.Warn("areas.delete: grids left without area", "area_id", id, "orphaned_grids", result.OrphanedGrids)
	}
	writeJSON(w, http.StatusOK, result)
}

func toAreaResponse(area areadomain.DisasterArea) areaResponse {
	return areaResponse{
		ID:          area.ID,
		Name:        area.Name,
		County:      area.County,
		Township:    area.Township,
		Description: area.Description,
		Center:      area.Center(),
		Bounds:      area.Bounds(),
		Status:      area.Status,
		CreatedBy:   area.CreatedBy,
		CreatedAt:   area.CreatedAt,
		UpdatedAt:   area.UpdatedAt,
	}
}
