package grids

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	griddomain "relief-grid-go/internal/domain/grid"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type supplyItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type requestSuppliesRequest struct {
	Items []supplyItemRequest `json:"items"`
}

type correctSupplyRequest struct {
	Received *float64 `json:"received"`
}

type correctVolunteerCountRequest struct {
	VolunteerRegistered *int `json:"volunteer_registered"`
}

func (h *Handlers) RequestSupplies(w http.ResponseWriter, r *http.Request) {
	var req requestSuppliesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	items := make([]griddomain.SupplyItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, griddomain.SupplyItem{Name: item.Name, Quantity: item.Quantity, Unit: item.Unit})
	}

	g, err := h.Grids.RequestSupplies(r.Context(), id, items)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.request_supplies", err, "grid_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponse(griddomain.Redacted(actor, *g)))
}

func (h *Handlers) CorrectSupplyLine(w http.ResponseWriter, r *http.Request) {
	var req correctSupplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}
	if req.Received == nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "received is required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "invalid supply name")
		return
	}

	line, err := h.Grids.CorrectSupplyLine(r.Context(), actor, id, name, *req.Received)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.correct_supply", err, "grid_id", id, "supply", name)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyLineResponse(*line))
}

func (h *Handlers) CorrectVolunteerCount(w http.ResponseWriter, r *http.Request) {
	var req correctVolunteerCountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}
	if req.VolunteerRegistered == nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeValidation, "volunteer_registered is required")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	g, err := h.Grids.CorrectVolunteerCount(r.Context(), actor, id, *req.VolunteerRegistered)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "grids.correct_volunteer_count", err, "grid_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponse(*g))
}
