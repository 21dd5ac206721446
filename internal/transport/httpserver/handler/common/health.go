package common

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Grids  int64  `json:"grids"`
}

// Health reports readiness. It touches the store through the cached stats
// feed so probes stay cheap.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Grids.Stats(r.Context())
	if err != nil {
		h.log.InternalError("health: stats failed", err)
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Grids: stats.Grids})
}
