package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "SAPULIDI_SERVER_HOST"
	EnvServerPort            = "SAPULIDI_SERVER_PORT"
	EnvServerReadTimeout     = "SAPULIDI_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "SAPULIDI_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "SAPULIDI_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "SAPULIDI_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. WriteTimeout must outlast a
// classification, which can spend a minute or more waiting on the model.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for field, v := range map[*string]string{
		&c.Host:            overlay.Host,
		&c.ReadTimeout:     overlay.ReadTimeout,
		&c.WriteTimeout:    overlay.WriteTimeout,
		&c.IdleTimeout:     overlay.IdleTimeout,
		&c.ShutdownTimeout: overlay.ShutdownTimeout,
	} {
		if v != "" {
			*field = v
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	c.Host = orDefault(c.Host, "0.0.0.0")
	if c.Port == 0 {
		c.Port = 8080
	}
	c.ReadTimeout = orDefault(c.ReadTimeout, "1m")
	c.WriteTimeout = orDefault(c.WriteTimeout, "5m")
	c.IdleTimeout = orDefault(c.IdleTimeout, "2m")
	c.ShutdownTimeout = orDefault(c.ShutdownTimeout, "30s")
}

func (c *ServerConfig) loadEnv() {
	for field, name := range map[*string]string{
		&c.Host:            EnvServerHost,
		&c.ReadTimeout:     EnvServerReadTimeout,
		&c.WriteTimeout:    EnvServerWriteTimeout,
		&c.IdleTimeout:     EnvServerIdleTimeout,
		&c.ShutdownTimeout: EnvServerShutdownTimeout,
	} {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
