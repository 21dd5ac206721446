package announcements

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	announcementdomain "relief-grid-go/internal/domain/announcement"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type linkPayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type announcementRequest struct {
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Category      string        `json:"category"`
	IsPinned      bool          `json:"is_pinned"`
	SortOrder     int           `json:"sort_order"`
	ExternalLinks []linkPayload `json:"external_links"`
	ContactPhone  string        `json:"contact_phone"`
}

type announcementResponse struct {
	ID            string                      `json:"id"`
	Title         string                      `json:"title"`
	Content       string                      `json:"content"`
	Category      announcementdomain.Category `json:"category"`
	IsPinned      bool                        `json:"is_pinned"`
	SortOrder     int                         `json:"sort_order"`
	ExternalLinks []linkPayload               `json:"external_links"`
	ContactPhone  string                      `json:"contact_phone"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Announcements.List(r.Context())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "announcements.list", err)
		return
	}

	response := make([]announcementResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toAnnouncementResponse(item))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	created, err := h.Announcements.Create(r.Context(), actor, req.toInput())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "announcements.create", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toAnnouncementResponse(*created))
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	updated, err := h.Announcements.Update(r.Context(), actor, id, req.toInput())
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "announcements.update", err, "announcement_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toAnnouncementResponse(*updated))
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.Announcements.Delete(r.Context(), actor, id); err != nil {
		commonhandler.WriteServiceError(w, h.log, "announcements.delete", err, "announcement_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req announcementRequest) toInput() announcementdomain.Input {
	links := make([]announcementdomain.Link, 0, len(req.ExternalLinks))
	for _, link := range req.ExternalLinks {
		links = append(links, announcementdomain.Link{Name: link.Name, URL: link.URL})
	}
	return announcementdomain.Input{
		Title:         req.Title,
		Content:       req.Content,
		Category:      announcementdomain.Category(strings.ToLower(strings.TrimSpace(req.Category))),
		IsPinned:      req.IsPinned,
		SortOrder:     req.SortOrder,
		ExternalLinks: links,
		ContactPhone:  req.ContactPhone,
	}
}

func toAnnouncementResponse(a announcementdomain.Announcement) announcementResponse {
	links := make([]linkPayload, 0, len(a.ExternalLinks))
	for _, link := range a.ExternalLinks {
		links = append(links, linkPayload{Name: link.Name, URL: link.URL})
	}
	return announcementResponse{
		ID:            a.ID,
		Title:         a.Title,
		Content:       a.Content,
		Category:      a.Category,
		IsPinned:      a.IsPinned,
		SortOrder:     a.SortOrder,
		ExternalLinks: links,
		ContactPhone:  a.ContactPhone,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
