package workflow

import (
	"fmt"

	"github.com/sapulidi/sapulidi/pkg/formatting"
)

// Normalize reduces a raw AI envelope to parsed JSON data. A candidate
// that is already structured is returned as is; a string is fence-stripped
// and parsed.
func Normalize(raw any) (any, error) {
	candidate := formatting.Unwrap(raw)

	text, ok := candidate.(string)
	if !ok {
		return candidate, nil
	}

	parsed, err := formatting.Parse[any](text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return parsed, nil
}
