// Package apperrors defines the sentinel errors surfaced by the API layer.
// Core analysis paths never raise these (every analysis failure degrades to
// a user-meaningful string); they exist for the thin request-validation
// surface around it.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the request carried a value that failed
	// validation, e.g. a malformed session ID or a rejected table name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable means a backing service needed by the request is not
	// configured or not reachable.
	ErrUnavailable = errors.New("unavailable")
)

// HTTPStatus maps a sentinel to its response status code. Unrecognized
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
