package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/sapulidi/sapulidi/internal/ai"
)

const statusClientClosedRequest = 499

var (
	ErrInvalidMessage = errors.New("message must be between 1 and 2000 characters")
	ErrUnavailable    = errors.New("chat assistant is not available")
	ErrTransport      = errors.New("chat assistant could not be reached")
	ErrTimeout        = errors.New("chat assistant took too long to respond")
)

// MapHTTPStatus maps chat errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable), errors.Is(err, ai.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTransport), errors.Is(err, ai.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
