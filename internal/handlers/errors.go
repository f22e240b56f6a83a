// Package handlers exposes the services as JSON endpoints.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/jobboard/httpx"
	"github.com/diewo77/jobboard/internal/apperr"
)

// writeError renders err as an httpx.ErrorResponse. Internal errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		log.Printf("[http] %s %s: %v", r.Method, r.URL.Path, err)
		httpx.Fail(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
		return
	}
	httpx.Fail(w, e.Kind.Status(), e.Code, e.Message, e.Details)
}

// decode reads a JSON body, answering 400 invalid_json on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httpx.DecodeJSON(w, r, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httpx.Fail(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body too large", nil)
	case errors.Is(err, httpx.ErrEmptyBody):
		httpx.Fail(w, http.StatusBadRequest, "invalid_json", "Request body is empty", nil)
	default:
		httpx.Fail(w, http.StatusBadRequest, "invalid_json", "Malformed JSON body", nil)
	}
	return false
}
