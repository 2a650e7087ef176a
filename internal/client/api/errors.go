package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
)

// ErrSessionExpired is returned when a request was rejected with 401 and the
// session could not be renewed. The stored credentials have been cleared by
// the time a caller sees it.
var ErrSessionExpired = errors.New("session expired, please log in again")

var errNoRefreshToken = errors.New("no refresh token stored")

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server's "message" field, or the raw body when the
	// response was not JSON.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Is maps status codes onto the shared sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperrors.ErrDuplicate:
		return e.StatusCode == http.StatusConflict
	case apperrors.ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}
