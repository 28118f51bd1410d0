// Package respond writes JSON responses and errors for the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/errs"
)

// Message is the body of simple acknowledgement and error responses
type Message struct {
	Message string `json:"message"`
}

// JSON writes v as a JSON response with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// OK writes a {"message": ...} response with the given status
func OK(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

// Error writes err as an errs.HTTPError. Anything that is not already an
// *errs.HTTPError is logged with the request id and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request failed")
		httpErr = errs.NewInternalServerError()
	}
	JSON(w, httpErr.Status, httpErr)
}
