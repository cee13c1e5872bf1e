package classifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/auth"
)

// statusClientClosedRequest is the de facto code for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

var (
	ErrNotFound       = errors.New("classification history item not found")
	ErrInFlight       = errors.New("a classification is already in progress")
	ErrInvalidRequest = errors.New("request body must be JSON with an image data URI")
)

// MapHTTPStatus maps classification and workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrCapabilityUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, workflow.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, workflow.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, workflow.ErrCancelled), errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, workflow.ErrMalformedResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInvalidImage), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
