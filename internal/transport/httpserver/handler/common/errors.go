package common

import (
	"errors"
	"net/http"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/announcement"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/discussion"
	"relief-grid-go/internal/domain/donation"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/gridio"
	"relief-grid-go/internal/domain/validation"
	"relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var businessErrors = []errorMapping{
	{target: access.ErrForbidden, status: http.StatusForbidden, code: CodeForbidden, message: "forbidden"},
	{target: grid.ErrGridNotFound, status: http.StatusNotFound, code: "grid_not_found", message: "grid not found"},
	{target: area.ErrAreaNotFound, status: http.StatusNotFound, code: "area_not_found", message: "disaster area not found"},
	{target: volunteer.ErrRegistrationNotFound, status: http.StatusNotFound, code: "registration_not_found", message: "registration not found"},
	{target: donation.ErrDonationNotFound, status: http.StatusNotFound, code: "donation_not_found", message: "donation not found"},
	{target: discussion.ErrDiscussionNotFound, status: http.StatusNotFound, code: "discussion_not_found", message: "discussion not found"},
	{target: announcement.ErrAnnouncementNotFound, status: http.StatusNotFound, code: "announcement_not_found", message: "announcement not found"},
	{target: grid.ErrDuplicateCode, status: http.StatusConflict, code: CodeDuplicateCode},
	{target: grid.ErrVersionConflict, status: http.StatusConflict, code: CodeVersionConflict},
	{target: volunteer.ErrInvalidTransition, status: http.StatusConflict, code: CodeInvalidTransition},
	{target: donation.ErrInvalidTransition, status: http.StatusConflict, code: CodeInvalidTransition},
	{target: grid.ErrUnknownSupplyLine, status: http.StatusUnprocessableEntity, code: CodeUnknownSupplyLine},
	{target: gridio.ErrMissingColumn, status: http.StatusBadRequest, code: CodeInvalidFile},
	{target: gridio.ErrEmptyFile, status: http.StatusBadRequest, code: CodeInvalidFile},
	{target: gridio.ErrUnsupportedFormat, status: http.StatusBadRequest, code: "unsupported_format"},
}

// WriteServiceError answers with the status of the first known domain error
// err wraps. Anything else is logged as internal and answered with 500.
// An empty mapping message means err.Error() is shown to the caller.
func WriteServiceError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	if errors.Is(err, validation.ErrInvalid) {
		log.BusinessError(op+": validation failed", err, args...)
		writeValidationError(w, err)
		return
	}

	for _, m := range businessErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		log.BusinessError(op+": "+m.code, err, args...)
		message := m.message
		if message == "" {
			message = err.Error()
		}
		writeError(w, m.status, m.code, message)
		return
	}

	log.InternalError(op+": failed", err, args...)
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
