package discussions

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"relief-grid-go/internal/domain/access"
	discussiondomain "relief-grid-go/internal/domain/discussion"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

const defaultListLimit = 50

type postRequest struct {
	AuthorName string `json:"author_name"`
	Message    string `json:"message"`
}

type discussionResponse struct {
	ID         string      `json:"id"`
	GridID     string      `json:"grid_id"`
	AuthorName string      `json:"author_name"`
	AuthorRole access.Role `json:"author_role"`
	Message    string      `json:"message"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	gridID := chi.URLParam(r, "id")
	limit, err := commonhandler.ParseIntParam(r.URL.Query().Get("limit"), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "invalid limit")
		return
	}

	discussions, err := h.Discussions.List(r.Context(), gridID, limit)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "discussions.list", err, "grid_id", gridID)
		return
	}

	response := make([]discussionResponse, 0, len(discussions))
	for _, d := range discussions {
		response = append(response, toDiscussionResponse(d))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	gridID := chi.URLParam(r, "id")
	discussion, err := h.Discussions.Post(r.Context(), actor, gridID, discussiondomain.PostInput{
		AuthorName: req.AuthorName,
		Message:    req.Message,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "discussions.post", err, "grid_id", gridID)
		return
	}
	writeJSON(w, http.StatusCreated, toDiscussionResponse(*discussion))
}

func toDiscussionResponse(d discussiondomain.Discussion) discussionResponse {
	return discussionResponse{
		ID:         d.ID,
		GridID:     d.GridID,
		AuthorName: d.AuthorName,
		AuthorRole: d.AuthorRole,
		Message:    d.Message,
		CreatedAt:  d.CreatedAt,
	}
}
