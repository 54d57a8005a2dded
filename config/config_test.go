package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_strategist/generator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("API_KEY", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.ProModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.FlashModel)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 3, cfg.Usage.Limits["strategist"])
	assert.Equal(t, generator.DefaultRegion, cfg.DefaultRegion)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadMissingKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, generator.IsConfiguration(err))
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoadMockNeedsNoKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := Load(writeConfig(t, "llm:\n  provider: mock\n"))
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SEO_KEY", "secret")

	cfg, err := Load(writeConfig(t, `
server_addr: "127.0.0.1:9000"
llm:
  provider: OpenAI
  pro_model: gpt-4o
  flash_model: gpt-4o-mini
  api_key_env: SEO_KEY
  timeout: 45s
usage:
  db_path: /tmp/usage.db
  limits:
    content_audit: 10
fetch:
  enabled: true
  timeout: 5s
default_region: "Canada (English)"
session_ttl: 2h
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, map[string]int{"strategist": 3, "content_audit": 10}, cfg.Usage.Limits)
	assert.True(t, cfg.Fetch.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, int64(5<<20), cfg.Fetch.MaxBytes)
	assert.Equal(t, "Canada (English)", cfg.DefaultRegion)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)

	s := cfg.LLMSettings()
	assert.Equal(t, "gpt-4o-mini", s.Model(generator.TierFlash))
	assert.Equal(t, "gpt-4o", s.Model(generator.TierPro))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		setting string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }, "llm.provider"},
		{"deepseek without base url", func(c *Config) { c.LLM.Provider = ProviderDeepSeek; c.LLM.ProModel = "deepseek-chat" }, "llm.base_url"},
		{"negative limit", func(c *Config) { c.Usage.Limits["strategist"] = -1 }, "usage.limits.strategist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.LLM.APIKey = "k"
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cerr *generator.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.setting, cerr.Setting)
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "llm: [unterminated"))
	assert.Error(t, err)
}
