package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.BaseURL = "https://my.example.com/internal"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := &Config{BaseURL: "https://my.example.com/internal"}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "milmove", cfg.Variant)
	assert.Equal(t, "masked_gorilla_csrf", cfg.CSRFCookieName)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing base url", func(c *Config) { c.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.BaseURL = "/internal" }},
		{"unknown variant", func(c *Config) { c.Variant = "desktop" }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
		{"metrics port out of range", func(c *Config) { c.MetricsPort = 70000 }},
		{"metrics path without slash", func(c *Config) { c.MetricsPath = "metrics" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_NormalizesCase(t *testing.T) {
	cfg := validConfig()
	cfg.Variant = "Office"
	cfg.LogLevel = "DEBUG"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "office", cfg.Variant)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestClone_IsIndependent(t *testing.T) {
	cfg := validConfig()
	clone := cfg.Clone()

	clone.BaseURL = "https://other.example.com"
	clone.MetricsPort = 9999

	assert.Equal(t, "https://my.example.com/internal", cfg.BaseURL)
	assert.Equal(t, 9090, cfg.MetricsPort)
}

func TestSafeConfig_UpdateValidates(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	bad := validConfig()
	bad.Variant = "desktop"
	require.Error(t, sc.Update(bad))

	// the stored config is untouched by the failed update
	assert.Equal(t, "milmove", sc.Get().Variant)

	good := validConfig()
	good.Variant = "admin"
	require.NoError(t, sc.Update(good))
	assert.Equal(t, "admin", sc.Get().Variant)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movekit.json")
	file := `{"base_url":"https://my.example.com/internal","variant":"office","log_format":"text"}`
	require.NoError(t, os.WriteFile(path, []byte(file), 0o600))

	t.Setenv(EnvVariant, "admin")
	t.Setenv(EnvMetricsPort, "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://my.example.com/internal", cfg.BaseURL)
	assert.Equal(t, "admin", cfg.Variant, "env overrides file")
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 9191, cfg.MetricsPort)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://my.example.com/internal")
	t.Setenv(EnvRequestTimeout, "not-a-duration")

	_, err := Load("")
	assert.Error(t, err)
}
