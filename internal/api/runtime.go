package api

import (
	"github.com/sapulidi/sapulidi/internal/config"
	"github.com/sapulidi/sapulidi/internal/infrastructure"
	"github.com/sapulidi/sapulidi/pkg/pagination"
)

// Runtime is what domain systems are built from: the shared subsystems
// plus the parts of config only the API reads.
type Runtime struct {
	*infrastructure.Infrastructure
	Config     *config.Config
	Pagination pagination.Config
}

// NewRuntime shares every subsystem with infra but tags the logger so API
// log lines carry module=api.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Config:         cfg,
		Pagination:     cfg.API.Pagination,
	}
}
