package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"relief-grid-go/internal/domain/validation"
)

// Codes carried in the error envelope. The rate limiter and auth middleware
// answer with the same envelope under their own codes.
const (
	CodeInvalidJSON       = "invalid_json"
	CodeValidation        = "validation_error"
	CodeInvalidFile       = "invalid_file"
	CodeInvalidTransition = "invalid_transition"
	CodeDuplicateCode     = "duplicate_code"
	CodeVersionConflict   = "version_conflict"
	CodeUnknownSupplyLine = "unknown_supply_line"
	CodeForbidden         = "forbidden"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal_error"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field names the rejected input of a validation error.
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// writeValidationError answers 400 and names the offending field when err
// carries one.
func writeValidationError(w http.ResponseWriter, err error) {
	body := errorBody{Code: CodeValidation, Message: err.Error()}
	var invalid *validation.Error
	if errors.As(err, &invalid) {
		body.Field = invalid.Field
	}
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON rejects unknown fields so misspelt counters are not silently
// dropped.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst any) error {
	return decodeJSON(r, dst)
}
