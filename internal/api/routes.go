package api

import (
	"net/http"

	"github.com/sapulidi/sapulidi/internal/config"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	routes.Register(
		mux,
		domain.Classifications.Handler().Routes(),
		domain.Chat.Handler().Routes(),
		domain.Profiles.Handler().Routes(),
		domain.Articles.Handler(maxUpload).Routes(),
		domain.Gallery.Handler(maxUpload).Routes(),
		domain.Prompts.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
