package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/movelink/movekit/httpclient"
	"github.com/movelink/movekit/session"
)

// Defaults applied by Default and by Validate for zero-valued fields.
const (
	DefaultVariant        = string(session.VariantMilMove)
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
)

// Config is the complete client-core configuration.
type Config struct {
	BaseURL        string        `json:"base_url"`
	Variant        string        `json:"variant"`
	CSRFCookieName string        `json:"csrf_cookie_name,omitempty"`
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	MetricsPort int    `json:"metrics_port,omitempty"`
	MetricsPath string `json:"metrics_path,omitempty"`
}

// Default returns a configuration with every optional field populated.
// BaseURL stays empty and must be supplied by file, env or flag.
func Default() *Config {
	return &Config{
		Variant:        DefaultVariant,
		CSRFCookieName: httpclient.DefaultCSRFCookieName,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		MetricsPort:    DefaultMetricsPort,
		MetricsPath:    DefaultMetricsPath,
	}
}

// Validate normalizes the config in place and checks it is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("base_url %q must be absolute", c.BaseURL)
	}

	c.Variant = strings.ToLower(c.Variant)
	if c.Variant == "" {
		c.Variant = DefaultVariant
	}
	if !session.Variant(c.Variant).Valid() {
		return fmt.Errorf("variant %q is not one of milmove, office, admin", c.Variant)
	}

	if c.CSRFCookieName == "" {
		c.CSRFCookieName = httpclient.DefaultCSRFCookieName
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log_format %q is not one of json, text", c.LogFormat)
	}

	if c.MetricsPort == 0 {
		c.MetricsPort = DefaultMetricsPort
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port %d is out of range", c.MetricsPort)
	}
	if c.MetricsPath == "" {
		c.MetricsPath = DefaultMetricsPath
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path %q must start with /", c.MetricsPath)
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = &Config{}
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
