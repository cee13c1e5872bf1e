package ai

import "errors"

var (
	// ErrUnavailable means no provider client is initialized. Retrying
	// the same call cannot succeed.
	ErrUnavailable = errors.New("ai capability unavailable")
	// ErrTransport wraps network, status, and provider failures.
	ErrTransport = errors.New("ai transport failure")
)
