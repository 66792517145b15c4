// Package cli provides common CLI initialization utilities shared by
// cmd/expenselog, cmd/expenselog-form and cmd/expenselog-normalize.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenselog/internal/backend"
	"expenselog/internal/chart"
	"expenselog/internal/config"
	"expenselog/internal/form"
	"expenselog/internal/ledger"
	"expenselog/internal/log"
)

// BootstrapLogger is used until the configuration is known.
func BootstrapLogger() *log.Logger {
	return log.New(log.Config{Level: log.DefaultConfig().Level, Component: log.ComponentApp, Output: os.Stderr})
}

// SetupLogger builds the application logger from cfg and sets it as the
// default logger. Records go to LOG_FILE when set, otherwise to out. The
// returned close function releases the log file, if one was opened.
func SetupLogger(cfg *config.Config, out io.Writer) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error { return nil }
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	logger := log.New(log.Config{Level: level, Component: log.ComponentApp, Output: out})
	log.SetDefault(logger)
	return logger, closeFn, nil
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", log.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the storage backend selected by cfg.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
}

// OpenLedger creates the configured backend and an initialized ledger on it.
// The caller must call the returned cleanup.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*ledger.Ledger, func() error, error) {
	res, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	l := ledger.New(res.Repository, ledger.WithLogger(logger))
	if err := l.Initialize(ctx); err != nil {
		res.Close()
		return nil, nil, fmt.Errorf("initialize ledger: %w", err)
	}

	logger.InfoContext(ctx, "Ledger ready", log.FieldBackend, cfg.DataBackend)
	return l, res.Close, nil
}

// NewFormHandler wires the ledger to chart and export settings from cfg.
func NewFormHandler(l *ledger.Ledger, cfg *config.Config, logger *log.Logger) *form.Handler {
	renderer := chart.NewRenderer(chart.Format(cfg.ChartFormat), cfg.ChartWidth, cfg.ChartHeight)
	return form.NewHandler(l, renderer, form.Config{
		ChartDir:   cfg.ChartDir,
		ExportPath: cfg.ExportPath,
		Logger:     logger,
	})
}

// SignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
