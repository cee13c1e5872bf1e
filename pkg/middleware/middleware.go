package middleware

import (
	"net/http"
	"slices"
)

// System manages an ordered stack of HTTP middleware. The first layer
// added is the outermost.
type System interface {
	Use(layers ...func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []func(http.Handler) http.Handler
}

// New creates a System seeded with layers.
func New(layers ...func(http.Handler) http.Handler) System {
	return &stack{layers: slices.Clone(layers)}
}

func (s *stack) Use(layers ...func(http.Handler) http.Handler) {
	s.layers = append(s.layers, layers...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, layer := range slices.Backward(s.layers) {
		handler = layer(handler)
	}
	return handler
}
