package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sapulidi/sapulidi/pkg/formatting"
	"github.com/sapulidi/sapulidi/pkg/middleware"
	"github.com/sapulidi/sapulidi/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SAPULIDI_CORS_ENABLED",
	Origins:          "SAPULIDI_CORS_ORIGINS",
	AllowedMethods:   "SAPULIDI_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SAPULIDI_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SAPULIDI_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SAPULIDI_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SAPULIDI_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SAPULIDI_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, pagination, and cache settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CacheTTL      string                `toml:"cache_ttl"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *APIConfig) CacheTTLDuration() time.Duration {
	return duration(c.CacheTTL)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SAPULIDI_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SAPULIDI_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("SAPULIDI_API_CACHE_TTL"); v != "" {
		c.CacheTTL = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	return nil
}
