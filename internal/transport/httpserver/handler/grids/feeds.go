package grids

import (
	"net/http"

	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) UnfulfilledSupplies(w http.ResponseWriter, r *http.Request) {
	items, err := h.Grids.UnfulfilledSupplies(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "feeds.unfulfilled_supplies", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) UrgentGrids(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	grids, err := h.Grids.UrgentGrids(r.Context(), actor)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "feeds.urgent_grids", err)
		return
	}
	writeJSON(w, http.StatusOK, toGridResponses(grids))
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Grids.Stats(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "feeds.stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
