package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvBaseURL        = "MOVEKIT_BASE_URL"
	EnvVariant        = "MOVEKIT_VARIANT"
	EnvCSRFCookieName = "MOVEKIT_CSRF_COOKIE_NAME"
	EnvRequestTimeout = "MOVEKIT_REQUEST_TIMEOUT"
	EnvLogLevel       = "MOVEKIT_LOG_LEVEL"
	EnvLogFormat      = "MOVEKIT_LOG_FORMAT"
	EnvMetricsPort    = "MOVEKIT_METRICS_PORT"
	EnvMetricsPath    = "MOVEKIT_METRICS_PATH"
)

// Load builds a configuration from defaults, then the JSON file at path
// when non-empty, then environment overrides. Callers validate once any
// remaining overrides (flags) are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides individual fields from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvVariant); v != "" {
		c.Variant = v
	}
	if v := os.Getenv(EnvCSRFCookieName); v != "" {
		c.CSRFCookieName = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = timeout
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvMetricsPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetricsPort, err)
		}
		c.MetricsPort = port
	}
	if v := os.Getenv(EnvMetricsPath); v != "" {
		c.MetricsPath = v
	}
	return nil
}
