// Package cli provides the startup steps shared by cmd/saldo,
// cmd/saldo-worker and cmd/saldo-export.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saldo/internal/backend"
	"saldo/internal/cache"
	"saldo/internal/config"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Setup loads .env, reads the configuration, applies adjust and validates
// the result, then builds the process logger writing to out.
func Setup(component string, out io.Writer, adjust ...func(*config.Config)) (*config.Config, *log.Logger, error) {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	for _, fn := range adjust {
		fn(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if out == nil {
		out = os.Stdout
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Format:    "text",
		Output:    out,
	})
	log.SetDefault(logger)
	return cfg, logger, nil
}

// Fatal logs err and exits. Used before deferred cleanups are registered.
func Fatal(logger *log.Logger, msg string, err error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}

// OpenBackend creates the configured repository. With publish false no
// AMQP publisher is created even when AMQP_URL is set.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger, publish bool) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !publish {
		backendCfg.AMQPURL = ""
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).
		CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}
	return result, nil
}

// NewViewCache builds the per-user view cache and starts its expiry loop.
// The returned stop func ends the loop.
func NewViewCache(cfg *config.Config, logger *log.Logger) (*cache.Versioned[ledger.View], func()) {
	views := cache.NewVersioned[ledger.View](cfg.ViewCacheSize, cfg.ViewCacheTTL)
	manager := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	manager.Register(views)
	manager.StartCleanup(cfg.ViewCacheTTL)
	return views, manager.Stop
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
