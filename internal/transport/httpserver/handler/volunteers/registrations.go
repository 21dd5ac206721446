package volunteers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	VolunteerName  string   `json:"volunteer_name"`
	VolunteerPhone string   `json:"volunteer_phone"`
	VolunteerEmail string   `json:"volunteer_email"`
	AvailableTime  string   `json:"available_time"`
	Skills         []string `json:"skills"`
	Equipment      []string `json:"equipment"`
	Notes          string   `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type registrationResponse struct {
	ID             string                 `json:"id"`
	GridID         string                 `json:"grid_id"`
	VolunteerName  string                 `json:"volunteer_name"`
	VolunteerPhone string                 `json:"volunteer_phone"`
	VolunteerEmail string                 `json:"volunteer_email"`
	AvailableTime  string                 `json:"available_time"`
	Skills         []string               `json:"skills"`
	Equipment      []string               `json:"equipment"`
	Notes          string                 `json:"notes"`
	Status         volunteerdomain.Status `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (h *Handlers) ListForGrid(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	gridID := chi.URLParam(r, "id")
	status := volunteerdomain.Status(strings.TrimSpace(r.URL.Query().Get("status")))

	registrations, err := h.Volunteers.ListForGrid(r.Context(), actor, gridID, status)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "registrations.list_for_grid", err, "grid_id", gridID)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponses(registrations))
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()
	filter := volunteerdomain.ListFilter{
		GridID: strings.TrimSpace(query.Get("grid_id")),
		Status: volunteerdomain.Status(strings.TrimSpace(query.Get("status"))),
	}

	registrations, err := h.Volunteers.List(r.Context(), actor, filter)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "registrations.list", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponses(registrations))
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	registration, err := h.Volunteers.GetRegistration(r.Context(), actor, id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "registrations.get", err, "registration_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponse(*registration))
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	gridID := chi.URLParam(r, "id")
	registration, err := h.Volunteers.Register(r.Context(), actor, gridID, volunteerdomain.RegisterInput{
		VolunteerName:  req.VolunteerName,
		VolunteerPhone: req.VolunteerPhone,
		VolunteerEmail: req.VolunteerEmail,
		AvailableTime:  req.AvailableTime,
		Skills:         req.Skills,
		Equipment:      req.Equipment,
		Notes:          req.Notes,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "registrations.create", err, "grid_id", gridID)
		return
	}
	writeJSON(w, http.StatusCreated, toRegistrationResponse(*registration))
}

func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	next := volunteerdomain.Status(strings.TrimSpace(req.Status))

	registration, err := h.Volunteers.AdvanceVolunteer(r.Context(), actor, id, next)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "registrations.advance", err, "registration_id", id, "status", next, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponse(*registration))
}

func toRegistrationResponses(registrations []volunteerdomain.Registration) []registrationResponse {
	response := make([]registrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		response = append(response, toRegistrationResponse(registration))
	}
	return response
}

func toRegistrationResponse(registration volunteerdomain.Registration) registrationResponse {
	return registrationResponse{
		ID:             registration.ID,
		GridID:         registration.GridID,
		VolunteerName:  registration.VolunteerName,
		VolunteerPhone: registration.VolunteerPhone,
		VolunteerEmail: registration.VolunteerEmail,
		AvailableTime:  registration.AvailableTime,
		Skills:         nonNil(registration.Skills),
		Equipment:      nonNil(registration.Equipment),
		Notes:          registration.Notes,
		Status:         registration.Status,
		CreatedAt:      registration.CreatedAt,
		UpdatedAt:      registration.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
