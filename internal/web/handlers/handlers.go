package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/validation"
	"github.com/saltyorg/schedulr/internal/web/respond"
)

// maxBodyBytes caps request bodies; every payload here is a small flat object
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into dst. The body must hold exactly
// one JSON value; malformed, empty or trailing input produces a 400 error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errs.NewBadRequestError("Invalid JSON body", nil)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errs.NewBadRequestError("Invalid JSON body", nil)
	}
	return nil
}

// validateRequest runs struct validation on v and writes a 400 with message
// when it fails. It reports whether the handler may continue.
func validateRequest(w http.ResponseWriter, r *http.Request, v any, message string) bool {
	fieldErrors, err := validation.Struct(v)
	if err != nil {
		respond.Error(w, r, err)
		return false
	}
	if fieldErrors != nil {
		respond.Error(w, r, errs.NewBadRequestError(message, fieldErrors))
		return false
	}
	return true
}

// idParam parses the {id} URL parameter. The routes only match digits, so a
// parse failure means the value overflows and cannot name a row.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
