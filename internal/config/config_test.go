package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sapulidi/sapulidi/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "sapulidi"
user = "sapulidi"
password = "sapulidi"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "uploads"
connection_string = "UseDevelopmentStorage=true"

[ai]
provider = "gemini"
api_key = "test-key"
temperature = 0.3
malformed_retries = 2

[auth]
jwt_secret = "0123456789abcdef0123456789abcdef"
token_ttl = "12h"

[api]
base_path = "/api"
cache_ttl = "2m"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[ai]
provider = "openai"
malformed_retries = 0
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

// minimalEnv supplies the fields validation requires when no config file exists.
func minimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SAPULIDI_DB_NAME", "testdb")
	t.Setenv("SAPULIDI_DB_USER", "testuser")
	t.Setenv("SAPULIDI_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("SAPULIDI_AUTH_JWT_SECRET", secret)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "uploads" {
		t.Errorf("storage container: got %s, want uploads", cfg.Storage.ContainerName)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Errorf("ai temperature: got %v, want 0.3", cfg.AI.Temperature)
	}
	if cfg.AI.ClassifyModel == "" {
		t.Error("ai classify model should default from provider")
	}
	if *cfg.AI.MalformedRetries != 2 {
		t.Errorf("ai malformed_retries: got %d, want 2", *cfg.AI.MalformedRetries)
	}
	if cfg.Auth.TokenTTLDuration() != 12*time.Hour {
		t.Errorf("auth token ttl: got %s, want 12h", cfg.Auth.TokenTTLDuration())
	}
	if cfg.API.CacheTTLDuration() != 2*time.Minute {
		t.Errorf("api cache ttl: got %s, want 2m", cfg.API.CacheTTLDuration())
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvSapulidiEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "sapulidi" {
		t.Errorf("db name should survive overlay: got %s", cfg.Database.Name)
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("ai provider: got %s, want openai", cfg.AI.Provider)
	}
	if *cfg.AI.MalformedRetries != 0 {
		t.Errorf("explicit zero malformed_retries should override: got %d", *cfg.AI.MalformedRetries)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv("SAPULIDI_VERSION", "2.0.0")
	t.Setenv("SAPULIDI_SERVER_PORT", "3000")
	t.Setenv("SAPULIDI_AI_LOCALE", "en")
	t.Setenv("SAPULIDI_API_CACHE_TTL", "30s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.AI.Locale != "en" {
		t.Errorf("ai locale: got %s, want en", cfg.AI.Locale)
	}
	if cfg.API.CacheTTLDuration() != 30*time.Second {
		t.Errorf("cache ttl: got %s, want 30s", cfg.API.CacheTTLDuration())
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	minimalEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("default shutdown timeout: got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("default base path: got %s", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("default max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.CacheTTLDuration() != 5*time.Minute {
		t.Errorf("default cache ttl: got %s", cfg.API.CacheTTLDuration())
	}
	if cfg.AI.Locale != "id" {
		t.Errorf("default locale: got %s, want id", cfg.AI.Locale)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short jwt secret", map[string]string{"SAPULIDI_AUTH_JWT_SECRET": "short"}},
		{"bad cache ttl", map[string]string{"SAPULIDI_API_CACHE_TTL": "soon"}},
		{"bad upload size", map[string]string{"SAPULIDI_API_MAX_UPLOAD_SIZE": "lots"}},
		{"bad port", map[string]string{"SAPULIDI_SERVER_PORT": "70000"}},
		{"bad shutdown timeout", map[string]string{"SAPULIDI_SHUTDOWN_TIMEOUT": "never"}},
		{"missing storage", map[string]string{"SAPULIDI_STORAGE_CONNECTION_STRING": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			minimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := config.Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, "[server\nport = ")
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnv(t *testing.T) {
	cfg := &config.Config{}

	t.Setenv(config.EnvSapulidiEnv, "")
	if got := cfg.Env(); got != "local" {
		t.Errorf("default env: got %s, want local", got)
	}

	t.Setenv(config.EnvSapulidiEnv, "production")
	if got := cfg.Env(); got != "production" {
		t.Errorf("env: got %s, want production", got)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := cfg.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("addr: got %s", got)
	}
}
