package main

import (
	"context"
	"errors"
	"os"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/sheets"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/worker"
)

func main() {
	cfg, logger, err := cli.Setup(log.ComponentWorker, os.Stdout)
	if err != nil {
		cli.Fatal(nil, "Failed to load configuration", err)
	}

	logger.Info("Starting saldo-worker")

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required for the worker", errors.New("missing AMQP_URL"))
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Worker is reading the memory backend, which is never shared with the server")
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	// The worker only reads; it never publishes changes of its own.
	result, err := cli.OpenBackend(ctx, cfg, logger, false)
	if err != nil {
		cli.Fatal(logger, "Failed to create backend", err)
	}
	defer result.Cleanup()

	// Every change is recomputed from storage, so the worker keeps no view cache.
	ledgerService := services.NewLedgerService(result.Repository, nil,
		services.WithLogger(logger))

	var opts []worker.Option
	if cfg.SheetsEnabled() && len(cfg.SheetsExportUsers) > 0 {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			result.Cleanup()
			cli.Fatal(logger, "Failed to initialize Sheets client", err)
		}
		exporter, err := sheets.NewExporter(client, cfg.GoogleSheetName, logger)
		if err != nil {
			result.Cleanup()
			cli.Fatal(logger, "Failed to initialize Sheets exporter", err)
		}
		opts = append(opts, worker.WithExporter(exporter, cfg.SheetsExportUsers...))
		logger.Info("Mirroring ledger views to Google Sheets",
			"sheet", cfg.GoogleSheetName,
			"users", len(cfg.SheetsExportUsers))
	} else if cfg.SheetsEnabled() {
		logger.Warn("GOOGLE_SPREADSHEET_ID set without SHEETS_EXPORT_USERS, sheet mirroring is off")
	}
	recomputer := worker.NewRecomputeWorker(ledgerService, logger, opts...)

	amqpClient, err := amqp.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		result.Cleanup()
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	// Reconnect with backoff whenever the consumer stops unexpectedly
	attempt := 0
	for {
		start := time.Now()
		err := amqpClient.ConsumeLedgerChanges(ctx, recomputer.HandleChange)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			break
		}
		if time.Since(start) > time.Minute {
			attempt = 0
		}
		wait := amqp.Backoff(attempt)
		attempt++
		logger.Warn("Consumer stopped, restarting", "error", err, "wait", wait)
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		if ctx.Err() != nil {
			break
		}
	}

	processed, dropped := recomputer.Stats()
	logger.Info("Worker stopped gracefully",
		"processed", processed,
		"exported", recomputer.Exported(),
		"dropped", dropped)
}
