package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sapulidi/sapulidi/pkg/middleware"
)

// Module serves one single-level path prefix (e.g. "/api"). Requests reach
// the inner router with the prefix removed and pass through the module's
// own middleware stack first.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
	handler    http.Handler
}

// New creates a Module. It panics on an empty, relative, or multi-level
// prefix since those are wiring mistakes.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
		handler:    router,
	}
}

// Handler returns the inner router wrapped with the module's middleware stack.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the module prefix and dispatches to the wrapped router.
// The escaped path is stripped as well so blob keys with encoded
// characters survive the hop.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := *req
	u := *req.URL
	u.Path = strip(req.URL.Path, m.prefix)
	if req.URL.RawPath != "" {
		u.RawPath = strip(req.URL.RawPath, m.prefix)
	}
	inner.URL = &u
	m.handler.ServeHTTP(w, &inner)
}

// Use adds middleware to the module's stack. Call before serving.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
	m.handler = m.middleware.Apply(m.router)
}

func strip(path, prefix string) string {
	if rest := strings.TrimPrefix(path, prefix); rest != "" {
		return rest
	}
	return "/"
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
