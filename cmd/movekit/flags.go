package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	BaseURL         string
	Variant         string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("MOVEKIT_CONFIG", ""),
		"Path to configuration file (env: MOVEKIT_CONFIG)")

	flag.StringVar(&cfg.BaseURL, "base-url",
		getEnv("MOVEKIT_BASE_URL", ""),
		"Backend base URL (env: MOVEKIT_BASE_URL)")

	flag.StringVar(&cfg.Variant, "variant",
		getEnv("MOVEKIT_VARIANT", ""),
		"App variant: milmove, office, admin (env: MOVEKIT_VARIANT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MOVEKIT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MOVEKIT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MOVEKIT_LOG_FORMAT", "json"),
		"Log format: json, text (env: MOVEKIT_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("MOVEKIT_METRICS_PORT", 0),
		"Metrics server port, 0 to use the configured default (env: MOVEKIT_METRICS_PORT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("MOVEKIT_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: MOVEKIT_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		_, _ = fmt.Fprintf(os.Stderr, "invalid value for %s: %s, using default %d\n", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		_, _ = fmt.Fprintf(os.Stderr, "invalid value for %s: %s, using default %s\n", key, value, fallback)
	}
	return fallback
}
