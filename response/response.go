// Package response writes JSON bodies and translates application errors into
// HTTP responses. It is the only place where apperr codes become statuses.
package response

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/kevinaaaquil/bookreview/apperr"
	"github.com/kevinaaaquil/bookreview/logging"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Message: msg})
}

// Error writes the response for err. Application errors keep their status and
// message; anything else is logged and answered with a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logging.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unhandled error")
		Message(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	JSON(w, status, ErrorBody{Message: appErr.Message, Details: appErr.Details})
}
