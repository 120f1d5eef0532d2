package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/nlp"
	"github.com/teemow/quickcal/internal/scheduler"
)

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	AuthURL string `json:"auth_url,omitempty"`
}

// statusFor maps a pipeline error to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, credstore.ErrInvalidUser),
		errors.Is(err, scheduler.ErrNoUsers),
		errors.Is(err, nlp.ErrEmptySentence):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, authflow.ErrMissingState), errors.Is(err, authflow.ErrStateMismatch):
		return http.StatusBadRequest, "invalid_state"
	case errors.Is(err, authflow.ErrConsentDenied):
		return http.StatusForbidden, "consent_denied"
	case errors.Is(err, authflow.ErrExchange):
		return http.StatusBadGateway, "exchange_failed"
	case errors.Is(err, event.ErrNotAuthorized):
		return http.StatusUnauthorized, "not_authorized"
	case errors.Is(err, event.ErrIncompleteDraft):
		return http.StatusUnprocessableEntity, "incomplete_draft"
	case errors.Is(err, event.ErrInvalidDraft):
		return http.StatusUnprocessableEntity, "invalid_draft"
	case errors.Is(err, scheduler.ErrExtractionUnavailable):
		return http.StatusServiceUnavailable, "extraction_unavailable"
	case errors.Is(err, nlp.ErrMalformedExtraction):
		return http.StatusBadGateway, "malformed_extraction"
	case errors.Is(err, nlp.ErrExtractionService):
		return http.StatusBadGateway, "extraction_failed"
	case errors.Is(err, event.ErrProvider):
		return http.StatusBadGateway, "provider_error"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writePipelineError renders err with its remedy.
func writePipelineError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	resp := errorResponse{Error: code, Message: scheduler.Explain(err)}

	var notAuthorized *event.NotAuthorizedError
	if errors.As(err, &notAuthorized) {
		resp.AuthURL = notAuthorized.AuthPath
	}
	writeJSON(w, status, resp)
}
