package ai

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var defaultModels = map[string]string{
	ProviderGemini: "gemini-1.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// Config selects the AI provider and shapes every call made to it.
// An empty APIKey is valid: the system starts in the unavailable state.
type Config struct {
	Provider         string  `toml:"provider"`
	APIKey           string  `toml:"api_key"`
	BaseURL          string  `toml:"base_url"`
	ClassifyModel    string  `toml:"classify_model"`
	ChatModel        string  `toml:"chat_model"`
	Temperature      float64 `toml:"temperature"`
	MaxTokens        int     `toml:"max_tokens"`
	Timeout          string  `toml:"timeout"`
	MaxRetries       *int    `toml:"max_retries"`
	InitialBackoff   string  `toml:"initial_backoff"`
	MaxBackoff       string  `toml:"max_backoff"`
	MalformedRetries *int    `toml:"malformed_retries"`
	Locale           string  `toml:"locale"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	APIKey           string
	BaseURL          string
	ClassifyModel    string
	ChatModel        string
	Temperature      string
	MaxTokens        string
	Timeout          string
	MaxRetries       string
	InitialBackoff   string
	MaxBackoff       string
	MalformedRetries string
	Locale           string
}

// TimeoutDuration bounds a single provider call.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Policy returns the transport retry policy.
func (c *Config) Policy() RetryPolicy {
	initial, _ := time.ParseDuration(c.InitialBackoff)
	maxInterval, _ := time.ParseDuration(c.MaxBackoff)
	return RetryPolicy{
		MaxRetries:      deref(c.MaxRetries),
		InitialInterval: initial,
		MaxInterval:     maxInterval,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	c.loadModelDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for field, v := range map[*string]string{
		&c.Provider:       overlay.Provider,
		&c.APIKey:         overlay.APIKey,
		&c.BaseURL:        overlay.BaseURL,
		&c.ClassifyModel:  overlay.ClassifyModel,
		&c.ChatModel:      overlay.ChatModel,
		&c.Timeout:        overlay.Timeout,
		&c.InitialBackoff: overlay.InitialBackoff,
		&c.MaxBackoff:     overlay.MaxBackoff,
		&c.Locale:         overlay.Locale,
	} {
		if v != "" {
			*field = v
		}
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.MaxRetries != nil {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.MalformedRetries != nil {
		c.MalformedRetries = overlay.MalformedRetries
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxRetries == nil {
		two := 2
		c.MaxRetries = &two
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "500ms"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "5s"
	}
	if c.MalformedRetries == nil {
		one := 1
		c.MalformedRetries = &one
	}
	if c.Locale == "" {
		c.Locale = "id"
	}
}

func (c *Config) loadModelDefaults() {
	if c.ClassifyModel == "" {
		c.ClassifyModel = defaultModels[c.Provider]
	}
	if c.ChatModel == "" {
		c.ChatModel = defaultModels[c.Provider]
	}
	if c.BaseURL == "" && c.Provider == ProviderOpenAI {
		c.BaseURL = "https://api.openai.com/v1"
	}
}

func (c *Config) loadEnv(env *Env) error {
	for field, name := range map[*string]string{
		&c.Provider:       env.Provider,
		&c.APIKey:         env.APIKey,
		&c.BaseURL:        env.BaseURL,
		&c.ClassifyModel:  env.ClassifyModel,
		&c.ChatModel:      env.ChatModel,
		&c.Timeout:        env.Timeout,
		&c.InitialBackoff: env.InitialBackoff,
		&c.MaxBackoff:     env.MaxBackoff,
		&c.Locale:         env.Locale,
	} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	if v := lookup(env.Temperature); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.Temperature, err)
		}
		c.Temperature = t
	}

	if v := lookup(env.MaxTokens); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.MaxTokens, err)
		}
		c.MaxTokens = n
	}

	for field, name := range map[**int]string{
		&c.MaxRetries:       env.MaxRetries,
		&c.MalformedRetries: env.MalformedRetries,
	} {
		if v := lookup(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*field = &n
		}
	}

	return nil
}

func (c *Config) validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("provider must be %s or %s, got %q", ProviderGemini, ProviderOpenAI, c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if *c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if n := *c.MalformedRetries; n < 0 || n > 2 {
		return fmt.Errorf("malformed_retries must be between 0 and 2")
	}
	for name, v := range map[string]string{
		"timeout":         c.Timeout,
		"initial_backoff": c.InitialBackoff,
		"max_backoff":     c.MaxBackoff,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
