package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"saldo/internal/backend"
	"saldo/internal/cli"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
	"saldo/internal/services"
)

func main() {
	cfg, logger, err := cli.Setup(log.ComponentApp, os.Stdout)
	if err != nil {
		cli.Fatal(nil, "Failed to load configuration", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := cli.OpenBackend(startupCtx, cfg, logger, true)
	startupCancel()
	if err != nil {
		cli.Fatal(logger, "Failed to create backend", err)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	views, stopCache := cli.NewViewCache(cfg, logger)
	defer stopCache()

	ledgerService := services.NewLedgerService(result.Repository, result.Publisher,
		services.WithViewCache(views),
		services.WithLogger(logger))

	var pinger backend.Pinger
	if p, ok := result.Repository.(backend.Pinger); ok {
		pinger = p
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledgerService, apphttp.Options{
		Logger: logger,
		Pinger: pinger,
		Auth: apphttp.AuthConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		CurrencySymbol: cfg.CurrencySymbol,
		Grouping:       cfg.Grouping(),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 20 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, trusting the " + apphttp.UserIDHeader + " header (development mode)")
	}

	// Graceful shutdown handling
	sigCtx, stopSignals := cli.SignalContext()
	defer stopSignals()
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-sigCtx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting saldo server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"jwt", cfg.JWTSecret != "",
		"amqp", cfg.AMQPURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
