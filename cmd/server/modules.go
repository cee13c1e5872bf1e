package main

import (
	"net/http"

	"github.com/sapulidi/sapulidi/internal/api"
	"github.com/sapulidi/sapulidi/internal/config"
	"github.com/sapulidi/sapulidi/internal/infrastructure"
	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/middleware"
	"github.com/sapulidi/sapulidi/pkg/module"
)

// Modules are the prefix-mounted halves of the server. Only /api today.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type readiness struct {
	Status     string          `json:"status"`
	Subsystems map[string]bool `json:"subsystems"`
	AI         bool            `json:"ai"`
}

// buildRouter wires the health endpoints and the Prometheus endpoint. /readyz only
// fails while startup hooks are running; a degraded AI provider is
// reported but keeps the pod in rotation so history and content still work.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.Use(middleware.Metrics(infra.Metrics.Registry()))

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		body := readiness{
			Status:     "ready",
			Subsystems: infra.Lifecycle.Status(),
			AI:         infra.AI.Ready(),
		}
		code := http.StatusOK
		if !infra.Lifecycle.Ready() {
			body.Status, code = "not ready", http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, code, body)
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}
