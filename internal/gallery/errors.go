package gallery

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("gallery item not found")
	ErrInvalidItem  = errors.New("title, media_type (image|video) and aspect_ratio (portrait|landscape) are required")
	ErrMissingMedia = errors.New("media file is required")
	ErrInvalidMedia = errors.New("media does not match its media_type")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps gallery domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidItem), errors.Is(err, ErrMissingMedia), errors.Is(err, ErrInvalidMedia):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
