package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"relaychat/internal/domain"
)

// Error codes carried in error responses.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeRecipientNotFound = "recipient_not_found"
	CodeClientNotFound    = "client_not_found"
	CodeStaleHandle       = "stale_handle"
	CodeRateLimited       = "rate_limited"
	CodeNotFound          = "not_found"
	CodeMethodNotAllowed  = "method_not_allowed"
	CodeInternal          = "internal"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, domain.ErrRecipientNotFound):
		return http.StatusNotFound, CodeRecipientNotFound
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, CodeClientNotFound
	case errors.Is(err, domain.ErrStaleHandle):
		return http.StatusForbidden, CodeStaleHandle
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
