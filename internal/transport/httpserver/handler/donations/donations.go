package donations

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	donationdomain "relief-grid-go/internal/domain/donation"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

type createDonationRequest struct {
	DonorName       string  `json:"donor_name"`
	DonorPhone      string  `json:"donor_phone"`
	DonorEmail      string  `json:"donor_email"`
	SupplyName      string  `json:"supply_name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	DeliveryMethod  string  `json:"delivery_method"`
	DeliveryAddress string  `json:"delivery_address"`
	DeliveryTime    string  `json:"delivery_time"`
	Notes           string  `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type donationResponse struct {
	ID              string                        `json:"id"`
	GridID          string                        `json:"grid_id"`
	DonorName       string                        `json:"donor_name"`
	DonorPhone      string                        `json:"donor_phone"`
	DonorEmail      string                        `json:"donor_email"`
	SupplyName      string                        `json:"supply_name"`
	Quantity        float64                       `json:"quantity"`
	Unit            string                        `json:"unit"`
	DeliveryMethod  donationdomain.DeliveryMethod `json:"delivery_method"`
	DeliveryAddress string                        `json:"delivery_address"`
	DeliveryTime    string                        `json:"delivery_time"`
	Status          donationdomain.Status         `json:"status"`
	Notes           string                        `json:"notes"`
	Applied         bool                          `json:"applied"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

func (h *Handlers) ListForGrid(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	gridID := chi.URLParam(r, "id")
	status := donationdomain.Status(strings.TrimSpace(r.URL.Query().Get("status")))

	donations, err := h.Donations.ListForGrid(r.Context(), actor, gridID, status)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "donations.list_for_grid", err, "grid_id", gridID)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	query := r.URL.Query()
	filter := donationdomain.ListFilter{
		GridID: strings.TrimSpace(query.Get("grid_id")),
		Status: donationdomain.Status(strings.TrimSpace(query.Get("status"))),
	}

	donations, err := h.Donations.List(r.Context(), actor, filter)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "donations.list", err, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponses(donations))
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")

	donation, err := h.Donations.GetDonation(r.Context(), actor, id)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "donations.get", err, "donation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(*donation))
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	gridID := chi.URLParam(r, "id")
	donation, err := h.Donations.Create(r.Context(), actor, gridID, donationdomain.CreateDonationInput{
		DonorName:       req.DonorName,
		DonorPhone:      req.DonorPhone,
		DonorEmail:      req.DonorEmail,
		SupplyName:      req.SupplyName,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		DeliveryMethod:  donationdomain.DeliveryMethod(strings.TrimSpace(req.DeliveryMethod)),
		DeliveryAddress: req.DeliveryAddress,
		DeliveryTime:    req.DeliveryTime,
		Notes:           req.Notes,
	})
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "donations.create", err, "grid_id", gridID, "supply", req.SupplyName)
		return
	}
	writeJSON(w, http.StatusCreated, toDonationResponse(*donation))
}

func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, commonhandler.CodeInvalidJSON, "invalid json body")
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	id := chi.URLParam(r, "id")
	next := donationdomain.Status(strings.TrimSpace(req.Status))

	donation, err := h.Donations.AdvanceDonation(r.Context(), actor, id, next)
	if err != nil {
		commonhandler.WriteServiceError(w, h.log, "donations.advance", err, "donation_id", id, "status", next, "actor_id", actor.ID)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(*donation))
}

func toDonationResponses(donations []donationdomain.Donation) []donationResponse {
	response := make([]donationResponse, 0, len(donations))
	for _, donation := range donations {
		response = append(response, toDonationResponse(donation))
	}
	return response
}

func toDonationResponse(donation donationdomain.Donation) donationResponse {
	return donationResponse{
		ID:              donation.ID,
		GridID:          donation.GridID,
		DonorName:       donation.DonorName,
		DonorPhone:      donation.DonorPhone,
		DonorEmail:      donation.DonorEmail,
		SupplyName:      donation.SupplyName,
		Quantity:        donation.Quantity,
		Unit:            donation.Unit,
		DeliveryMethod:  donation.DeliveryMethod,
		DeliveryAddress: donation.DeliveryAddress,
		DeliveryTime:    donation.DeliveryTime,
		Status:          donation.Status,
		Notes:           donation.Notes,
		Applied:         donation.Applied,
		CreatedAt:       donation.CreatedAt,
		UpdatedAt:       donation.UpdatedAt,
	}
}
