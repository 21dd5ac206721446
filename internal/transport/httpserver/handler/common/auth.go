package common

import (
	"net/http"

	"relief-grid-go/internal/transport/httpserver/middleware"
)

type meResponse struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role"`
	Guest bool   `json:"guest"`
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		ID:    actor.ID,
		Role:  string(actor.Role),
		Guest: actor.IsGuest(),
	})
}
