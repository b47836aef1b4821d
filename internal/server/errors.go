package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/careers-board/internal/types"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		ve *types.ValidationError
		nf *types.NotFoundError
		tl *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &tl):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Server-side failures are
// not described beyond their kind.
func errorMessage(err error) string {
	var (
		ve *types.ValidationError
		nf *types.NotFoundError
		se *types.StorageError
		pe *types.PersistenceError
		tl *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		if ve.Message != "" {
			return ve.Message
		}
		return ve.Error()
	case errors.As(err, &nf):
		if nf.Resource == "" {
			return "Not found"
		}
		return strings.ToUpper(nf.Resource[:1]) + nf.Resource[1:] + " not found"
	case errors.As(err, &tl):
		return "Upload exceeds the size limit"
	case errors.As(err, &se):
		return "Failed to store resume"
	case errors.As(err, &pe):
		return "Database error"
	default:
		return "Internal server error"
	}
}
