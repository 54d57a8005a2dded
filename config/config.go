// Package config loads the YAML settings file and resolves model credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"seo_strategist/generator"
)

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"
)

// Config holds every runtime setting.
type Config struct {
	ServerAddr string      `yaml:"server_addr"`
	LLM        LLMConfig   `yaml:"llm"`
	Usage      UsageConfig `yaml:"usage"`
	Fetch      FetchConfig `yaml:"fetch"`
	// DefaultRegion targets content briefs requested before any strategy run.
	DefaultRegion string `yaml:"default_region"`
	// SessionTTL drops web sessions left idle for longer.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// LLMConfig selects the model provider. APIKey wins over APIKeyEnv.
type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	ProModel   string        `yaml:"pro_model"`
	FlashModel string        `yaml:"flash_model"`
	APIKey     string        `yaml:"api_key"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// UsageConfig configures the free-generation counters. An empty DBPath keeps counts in memory.
type UsageConfig struct {
	DBPath string         `yaml:"db_path"`
	Limits map[string]int `yaml:"limits"`
}

// FetchConfig controls outbound page fetching for competitor metadata and URL audits.
type FetchConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	c := Config{}
	c.Resolve()
	return c
}

// Load reads path, fills defaults and validates. A missing file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve fills unset fields with defaults and reads the API key from the environment.
func (c *Config) Resolve() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderGemini
	}
	if c.LLM.Provider == ProviderGemini || c.LLM.Provider == ProviderMock {
		if c.LLM.ProModel == "" {
			c.LLM.ProModel = "gemini-2.5-pro"
		}
		if c.LLM.FlashModel == "" {
			c.LLM.FlashModel = "gemini-2.5-flash"
		}
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "API_KEY"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 2 * time.Minute
	}

	limits := map[string]int{string(generator.OpStrategist): 3}
	for op, n := range c.Usage.Limits {
		limits[op] = n
	}
	c.Usage.Limits = limits

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = 5 << 20
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "seo-strategist/1.0 (+https://github.com/seo-strategist)"
	}
	if c.DefaultRegion == "" {
		c.DefaultRegion = generator.DefaultRegion
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
}

// Validate reports the first unusable setting as a generator.ConfigurationError.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini, ProviderOpenAI, ProviderDeepSeek:
	default:
		return &generator.ConfigurationError{Setting: "llm.provider", Msg: fmt.Sprintf("provider %q not supported", c.LLM.Provider)}
	}
	if c.LLM.APIKey == "" {
		return &generator.ConfigurationError{
			Setting: "llm.api_key",
			Msg:     fmt.Sprintf("no API key configured; set %s in the environment or llm.api_key in the config file", c.LLM.APIKeyEnv),
		}
	}
	if c.LLM.ProModel == "" {
		return &generator.ConfigurationError{Setting: "llm.pro_model", Msg: "model is required"}
	}
	if c.LLM.Provider == ProviderDeepSeek && c.LLM.BaseURL == "" {
		return &generator.ConfigurationError{Setting: "llm.base_url", Msg: "deepseek requires an OpenAI-compatible base_url"}
	}
	for op, n := range c.Usage.Limits {
		if n < 0 {
			return &generator.ConfigurationError{Setting: "usage.limits." + op, Msg: "limit cannot be negative"}
		}
	}
	return nil
}

// LLMSettings converts the provider block for the generator clients.
func (c *Config) LLMSettings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:   c.LLM.Provider,
		ProModel:   c.LLM.ProModel,
		FlashModel: c.LLM.FlashModel,
		APIKey:     c.LLM.APIKey,
		BaseURL:    c.LLM.BaseURL,
		Timeout:    c.LLM.Timeout,
	}
}
