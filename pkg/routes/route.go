package routes

import "net/http"

// Wrapper decorates a handler func. Auth guards are the usual case.
type Wrapper func(http.HandlerFunc) http.HandlerFunc

// Route binds an HTTP method and pattern to a handler, with optional wrappers
// applied innermost-last.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Wrap    []Wrapper
}

func (r Route) handler(outer []Wrapper) http.HandlerFunc {
	h := r.Handler
	for i := len(r.Wrap) - 1; i >= 0; i-- {
		h = r.Wrap[i](h)
	}
	for i := len(outer) - 1; i >= 0; i-- {
		h = outer[i](h)
	}
	return h
}
