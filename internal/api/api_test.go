package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/api"
	"github.com/sapulidi/sapulidi/internal/config"
	"github.com/sapulidi/sapulidi/internal/infrastructure"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/database"
	"github.com/sapulidi/sapulidi/pkg/middleware"
	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	one := 1
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "sapulidi",
			User:            "sapulidi",
			Password:        "sapulidi",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "uploads",
			ConnectionString: azuriteConnString,
		},
		AI: ai.Config{
			Provider:         ai.ProviderGemini,
			ClassifyModel:    "gemini-1.5-flash",
			ChatModel:        "gemini-1.5-flash",
			Temperature:      0.2,
			MaxTokens:        2048,
			Timeout:          "60s",
			MaxRetries:       new(2),
			InitialBackoff:   "500ms",
			MaxBackoff:       "5s",
			MalformedRetries: &one,
			Locale:           "id",
		},
		Auth: auth.Config{
			JWTSecret: "0123456789abcdef0123456789abcdef",
			TokenTTL:  "24h",
			Issuer:    "sapulidi",
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "10MB",
			CacheTTL:      "5m",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()

	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewModuleRejectsProtectedRoutes(t *testing.T) {
	cfg := validConfig()

	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"history requires user", "GET", "/api/classifications/history", "", http.StatusUnauthorized},
		{"chat requires user", "GET", "/api/chat/messages", "", http.StatusUnauthorized},
		{"profile requires user", "GET", "/api/profiles/me", "", http.StatusUnauthorized},
		{"invalid token", "GET", "/api/chat/faqs", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Serve(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewModuleInvalidLocale(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Locale = "fr"

	if _, err := api.NewModule(cfg, setupInfra(t, cfg)); err == nil {
		t.Fatal("expected error for unsupported locale")
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.AI == nil {
		t.Error("runtime ai is nil")
	}
	if runtime.Auth == nil {
		t.Error("runtime auth is nil")
	}
	if runtime.Metrics == nil {
		t.Error("runtime metrics is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

	domain, err := api.NewDomain(runtime)
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Classifications == nil || domain.Chat == nil || domain.Profiles == nil {
		t.Error("domain systems missing")
	}
}
