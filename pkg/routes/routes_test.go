package routes_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sapulidi/sapulidi/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func tag(name string, trail *[]string) routes.Wrapper {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			*trail = append(*trail, name)
			next(w, r)
		}
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/articles",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/drafts",
				Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: ok}},
			},
		},
	})

	tests := []struct {
		name string
		path string
	}{
		{"list", "/articles"},
		{"find", "/articles/123"},
		{"nested child", "/articles/drafts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rec.Code)
			}
		})
	}
}

func TestWrapOrder(t *testing.T) {
	var trail []string
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/chat",
		Wrap:   []routes.Wrapper{tag("group", &trail)},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/messages",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					trail = append(trail, "handler")
				},
				Wrap: []routes.Wrapper{tag("first", &trail), tag("second", &trail)},
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/chat/messages", nil))

	if got, want := strings.Join(trail, ","), "group,first,second,handler"; got != want {
		t.Errorf("trail = %s, want %s", got, want)
	}
}
