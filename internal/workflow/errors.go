package workflow

import "errors"

var (
	ErrCapabilityUnavailable = errors.New("AI service is not available, please try again later")
	ErrTransport             = errors.New("failed to reach the AI service, please try again")
	ErrMalformedResponse     = errors.New("AI returned an unreadable response, please try again")
	ErrInvalidImage          = errors.New("please upload an image file")
	ErrTimeout               = errors.New("the AI service took too long to respond, please try again")
	ErrCancelled             = errors.New("classification was cancelled")
)
