package module

import (
	"net/http"
	"strings"

	"github.com/sapulidi/sapulidi/pkg/middleware"
)

// Router sends each request to the module owning its first path segment.
// Anything unowned, such as /healthz or /metrics, goes to a plain ServeMux.
// Router middleware sees both kinds of request.
type Router struct {
	modules    map[string]*Module
	native     *http.ServeMux
	middleware middleware.System
	handler    http.Handler
}

func NewRouter() *Router {
	r := &Router{
		modules:    map[string]*Module{},
		native:     http.NewServeMux(),
		middleware: middleware.New(),
	}
	r.handler = http.HandlerFunc(r.dispatch)
	return r
}

// Use adds router-wide middleware. Call before serving.
func (r *Router) Use(mw func(http.Handler) http.Handler) {
	r.middleware.Use(mw)
	r.handler = r.middleware.Apply(http.HandlerFunc(r.dispatch))
}

// HandleNative registers a route that lives outside every module.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount replaces any module already registered under m's prefix.
func (r *Router) Mount(m *Module) {
	r.modules[m.prefix] = m
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	trimTrailingSlash(req)

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

// firstSegment returns "/api" for "/api/classifications/history".
func firstSegment(path string) string {
	head, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return "/" + head
}

func trimTrailingSlash(req *http.Request) {
	u := req.URL
	if len(u.Path) <= 1 || !strings.HasSuffix(u.Path, "/") {
		return
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")
}
