// Package main implements the movekit session agent: a headless client
// core that boots an authenticated session against a move-management
// backend, keeps the normalized entity state fresh, and serves metrics
// and health endpoints while it runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/movelink/movekit/config"
	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/flow"
	"github.com/movelink/movekit/httpclient"
	"github.com/movelink/movekit/internalapi"
	"github.com/movelink/movekit/metric"
	"github.com/movelink/movekit/onboarding"
	"github.com/movelink/movekit/session"
	"github.com/movelink/movekit/state"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "movekit"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Agent failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}

	cfg, err := loadConfiguration(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		logger.Info("Configuration is valid",
			"base_url", cfg.BaseURL,
			"variant", cfg.Variant)
		return nil
	}

	registry := metric.NewMetricsRegistry()
	metricsServer := metric.NewServer(cfg.MetricsPort, cfg.MetricsPath, registry)
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	defer func() {
		if err := metricsServer.Stop(); err != nil {
			logger.Warn("Metrics server stop failed", "error", err)
		}
	}()
	logger.Info("Metrics server listening", "address", metricsServer.Address())

	httpClient, err := httpclient.NewClient(cfg.BaseURL,
		httpclient.WithCSRFCookieName(cfg.CSRFCookieName),
		httpclient.WithTimeout(cfg.RequestTimeout),
		httpclient.WithSlog(logger),
	)
	if err != nil {
		return fmt.Errorf("building HTTP client: %w", err)
	}
	api := internalapi.NewClient(httpClient, internalapi.WithLogger(logger))

	metrics := registry.CoreMetrics()
	st := state.New()
	store := entitystore.New(entitystore.WithMetrics(metrics))
	runner := flow.NewRunner(st, store,
		flow.WithLogger(logger),
		flow.WithMetrics(metrics),
	)

	variant := session.Variant(cfg.Variant)
	sessions := session.NewManager(api, runner, variant, session.WithLogger(logger))
	onboard := onboarding.NewManager(api, runner, onboarding.WithLogger(logger))

	dispatcher := flow.NewDispatcher(runner)
	if err := dispatcher.Register(sessions.BootstrapFlow()); err != nil {
		return err
	}
	if err := dispatcher.Register(onboard.InitFlow()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := dispatcher.DispatchSync(ctx, session.FlowBootstrap)
	if err != nil {
		return err
	}
	if outcome.Failed() {
		return fmt.Errorf("session bootstrap: %w", outcome.Err)
	}
	logger.Info("Session authenticated",
		"run_id", outcome.RunID.String(),
		"variant", cfg.Variant)

	// customer onboarding only applies to the milmove variant
	if variant == session.VariantMilMove {
		outcome, err = dispatcher.DispatchSync(ctx, onboarding.FlowInit)
		if err != nil {
			return err
		}
		if outcome.Failed() {
			return fmt.Errorf("onboarding initialization: %w", outcome.Err)
		}
		logger.Info("Onboarding initialized",
			"run_id", outcome.RunID.String(),
			"next_step", st.Path())
		defer func() {
			if err := onboard.Shutdown(cliCfg.ShutdownTimeout); err != nil {
				logger.Warn("Watcher shutdown failed", "error", err)
			}
		}()
	}

	logger.Info("Agent running", "entity_types", store.Types())
	<-ctx.Done()
	dispatcher.Wait()
	logger.Info("Shutting down")
	return nil
}

func loadConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	if cliCfg.BaseURL != "" {
		cfg.BaseURL = cliCfg.BaseURL
	}
	if cliCfg.Variant != "" {
		cfg.Variant = cliCfg.Variant
	}
	if cliCfg.LogLevel != "" {
		cfg.LogLevel = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.LogFormat = cliCfg.LogFormat
	}
	if cliCfg.MetricsPort != 0 {
		cfg.MetricsPort = cliCfg.MetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
