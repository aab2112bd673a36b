// Package main implements the entry point for the EDIStreams application.
// EDIStreams is an X12 EDI claim ingestion pipeline that tokenizes 837
// transmissions, assembles them into hierarchical claim loops, validates
// them, and publishes claim documents to NATS.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/c360/edistreams/component"
	"github.com/c360/edistreams/config"
	"github.com/c360/edistreams/input/file"
	"github.com/c360/edistreams/metric"
	"github.com/c360/edistreams/natsclient"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "edistreams"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	metricsRegistry := metric.NewRegistry()
	metricsServer := startMetricsServer(cliCfg, metricsRegistry)
	if metricsServer != nil {
		defer func() { _ = metricsServer.Stop() }()
	}

	natsClient, err := setupNATS(ctx, cfg, metricsRegistry)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() { _ = natsClient.Close(ctx) }()
	}

	inputComponent := file.NewInput(file.InputDeps{
		Config: *cfg,
		Dependencies: component.Dependencies{
			NATSClient:      natsClient,
			MetricsRegistry: metricsRegistry,
			Logger:          logger,
		},
	})

	if err := inputComponent.Initialize(); err != nil {
		return fmt.Errorf("initialize input: %w", err)
	}

	return runWithSignalHandling(ctx, inputComponent, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting EDIStreams (X12 claim ingestion)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads configuration and applies CLI overrides
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadFile(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if len(cliCfg.Inputs) > 0 {
		cfg.Input.Sources = cliCfg.Inputs
	}
	if cliCfg.Subject != "" {
		cfg.Input.Subject = cliCfg.Subject
	}
	if cliCfg.Publish {
		cfg.Input.Publish = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// startMetricsServer exposes the Prometheus endpoint when a port is configured.
func startMetricsServer(cliCfg *CLIConfig, registry *metric.Registry) *metric.Server {
	if cliCfg.MetricsPort <= 0 {
		return nil
	}

	server := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	slog.Info("Metrics server started", "address", server.Address())
	return server
}

// setupNATS creates and connects the NATS client when publishing is enabled.
// Validation-only runs skip the connection entirely.
func setupNATS(ctx context.Context, cfg *config.Config, registry *metric.Registry) (*natsclient.Client, error) {
	if !cfg.Input.Publish {
		return nil, nil
	}

	natsClient, err := natsclient.NewClient(strings.Join(cfg.NATS.URLs, ","),
		natsclient.WithClientName(appName),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithMetrics(registry.CoreMetrics()),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "urls", cfg.NATS.URLs)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := natsClient.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}

	return natsClient, nil
}

// runWithSignalHandling starts the input component and waits for it to drain
// its sources or for a shutdown signal, whichever comes first.
func runWithSignalHandling(ctx context.Context, inputComponent *file.Input, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := inputComponent.Start(signalCtx); err != nil {
		return fmt.Errorf("start input: %w", err)
	}
	slog.Info("EDIStreams started successfully")

	done := make(chan struct{})
	go func() {
		inputComponent.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All input sources processed", "transactions", inputComponent.Processed())
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	}

	if err := inputComponent.Stop(shutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	health := inputComponent.Health()
	if !health.Healthy {
		return fmt.Errorf("input finished unhealthy: %s", health.LastError)
	}

	slog.Info("EDIStreams shutdown complete")
	return nil
}

// printHelp prints help information
func printHelp() {
	printDetailedHelp()
}
