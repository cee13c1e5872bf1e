package api

import (
	"fmt"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/articles"
	"github.com/sapulidi/sapulidi/internal/chat"
	"github.com/sapulidi/sapulidi/internal/classifications"
	"github.com/sapulidi/sapulidi/internal/gallery"
	"github.com/sapulidi/sapulidi/internal/profiles"
	"github.com/sapulidi/sapulidi/internal/prompts"
	"github.com/sapulidi/sapulidi/internal/workflow"
	"github.com/sapulidi/sapulidi/pkg/notify"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 500
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifications classifications.System
	Chat            chat.System
	Profiles        profiles.System
	Articles        articles.System
	Gallery         gallery.System
	Prompts         prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	cfg := runtime.Config
	db := runtime.Database.Connection()

	locale, err := prompts.ParseLocale(cfg.AI.Locale)
	if err != nil {
		return nil, fmt.Errorf("ai locale: %w", err)
	}

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination, locale)

	wf := &workflow.Runtime{
		AI:      runtime.AI,
		Prompts: promptsSystem,
		Logger:  runtime.Logger,
		Metrics: workflow.NewMetrics(runtime.Metrics.Registry()),
		Options: ai.Options{
			Model:       cfg.AI.ClassifyModel,
			Temperature: float32(cfg.AI.Temperature),
			MaxTokens:   int32(cfg.AI.MaxTokens),
		},
		MalformedRetries: *cfg.AI.MalformedRetries,
	}

	classificationsSystem := classifications.New(
		classifications.NewStore(db),
		wf,
		runtime.Storage,
		notify.Log(runtime.Logger),
		cfg.API.CacheTTLDuration(),
		encodedLimit(cfg.API.MaxUploadSizeBytes()),
		runtime.Logger,
	)

	chatSystem := chat.New(
		chat.NewStore(db),
		runtime.AI,
		promptsSystem,
		ai.Options{
			Model:       cfg.AI.ChatModel,
			Temperature: chatTemperature,
			MaxTokens:   chatMaxTokens,
		},
		runtime.Logger,
	)

	profilesSystem := profiles.New(
		profiles.NewStore(db),
		runtime.Auth,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	articlesSystem := articles.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	gallerySystem := gallery.New(
		gallery.NewStore(db),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Classifications: classificationsSystem,
		Chat:            chatSystem,
		Profiles:        profilesSystem,
		Articles:        articlesSystem,
		Gallery:         gallerySystem,
		Prompts:         promptsSystem,
	}, nil
}

// encodedLimit sizes a JSON body carrying a base64 data URI of up to n
// decoded bytes.
func encodedLimit(n int64) int64 {
	return (n+2)/3*4 + 1024
}
