package profiles

import (
	"errors"
	"net/http"

	"github.com/sapulidi/sapulidi/pkg/auth"
)

var (
	ErrNotFound          = errors.New("profile not found")
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrDuplicateUsername = errors.New("username is already taken")
	ErrInvalidEmail      = errors.New("email address is invalid")
	ErrInvalidUsername   = errors.New("username must be 3 to 30 characters without spaces")
	ErrInvalidRole       = errors.New("role must be user or admin")
	ErrInvalidAvatar     = errors.New("avatar must be a jpeg, png, gif, or webp image")
	ErrAvatarTooLarge    = errors.New("avatar must be smaller than 2 MB")
)

// MapHTTPStatus maps profile and auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrInvalidAvatar):
		return http.StatusBadRequest
	case errors.Is(err, ErrAvatarTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return auth.MapHTTPStatus(err)
	}
}
