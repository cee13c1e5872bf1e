package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/database"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSapulidiEnv             = "SAPULIDI_ENV"
	EnvSapulidiShutdownTimeout = "SAPULIDI_SHUTDOWN_TIMEOUT"
	EnvSapulidiVersion         = "SAPULIDI_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "SAPULIDI_DB_URL",
	Host:            "SAPULIDI_DB_HOST",
	Port:            "SAPULIDI_DB_PORT",
	Name:            "SAPULIDI_DB_NAME",
	User:            "SAPULIDI_DB_USER",
	Password:        "SAPULIDI_DB_PASSWORD",
	SSLMode:         "SAPULIDI_DB_SSL_MODE",
	MaxOpenConns:    "SAPULIDI_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SAPULIDI_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SAPULIDI_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SAPULIDI_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SAPULIDI_STORAGE_CONTAINER_NAME",
	ConnectionString: "SAPULIDI_STORAGE_CONNECTION_STRING",
	ServiceURL:       "SAPULIDI_STORAGE_SERVICE_URL",
	PublicBaseURL:    "SAPULIDI_STORAGE_PUBLIC_BASE_URL",
}

var aiEnv = &ai.Env{
	Provider:         "SAPULIDI_AI_PROVIDER",
	APIKey:           "SAPULIDI_AI_API_KEY",
	BaseURL:          "SAPULIDI_AI_BASE_URL",
	ClassifyModel:    "SAPULIDI_AI_CLASSIFY_MODEL",
	ChatModel:        "SAPULIDI_AI_CHAT_MODEL",
	Temperature:      "SAPULIDI_AI_TEMPERATURE",
	MaxTokens:        "SAPULIDI_AI_MAX_TOKENS",
	Timeout:          "SAPULIDI_AI_TIMEOUT",
	MaxRetries:       "SAPULIDI_AI_MAX_RETRIES",
	InitialBackoff:   "SAPULIDI_AI_INITIAL_BACKOFF",
	MaxBackoff:       "SAPULIDI_AI_MAX_BACKOFF",
	MalformedRetries: "SAPULIDI_AI_MALFORMED_RETRIES",
	Locale:           "SAPULIDI_AI_LOCALE",
}

var authEnv = &auth.Env{
	JWTSecret:    "SAPULIDI_AUTH_JWT_SECRET",
	TokenTTL:     "SAPULIDI_AUTH_TOKEN_TTL",
	Issuer:       "SAPULIDI_AUTH_ISSUER",
	OIDCIssuer:   "SAPULIDI_AUTH_OIDC_ISSUER",
	OIDCClientID: "SAPULIDI_AUTH_OIDC_CLIENT_ID",
}

// Config is the root configuration for the SapuLidi service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	AI              ai.Config       `toml:"ai"`
	Auth            auth.Config     `toml:"auth"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SAPULIDI_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSapulidiEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.AI.Merge(&overlay.AI)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.AI.Finalize(aiEnv); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSapulidiShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSapulidiVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSapulidiEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
