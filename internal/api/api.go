// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/sapulidi/sapulidi/internal/config"
	"github.com/sapulidi/sapulidi/internal/infrastructure"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/middleware"
	"github.com/sapulidi/sapulidi/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Bearer tokens are resolved for every route; handlers decide whether a
// caller is required.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Middleware(runtime.Auth, runtime.Logger))

	return m, nil
}
