package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/sheets"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/sheets/memory"
)

func main() {
	userID := flag.String("user", "", "user id whose ledger is exported (required)")
	sheetName := flag.String("sheet", "", "target sheet name (defaults to GOOGLE_SHEET_NAME)")
	dryRun := flag.Bool("dry-run", false, "print the rows instead of writing to Google Sheets")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall time limit")
	flag.Parse()

	if err := run(*userID, *sheetName, *dryRun, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "saldo-export: %v\n", err)
		os.Exit(1)
	}
}

func run(userID, sheetName string, dryRun bool, timeout time.Duration) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		flag.Usage()
		return fmt.Errorf("-user is required")
	}

	cfg, logger, err := cli.Setup(log.ComponentSheets, os.Stderr, func(c *config.Config) {
		if dryRun {
			// Credentials are irrelevant when nothing is written
			c.GoogleSpreadsheetID = ""
		}
	})
	if err != nil {
		return err
	}
	if !dryRun && !cfg.SheetsEnabled() {
		return fmt.Errorf("GOOGLE_SPREADSHEET_ID is required unless -dry-run is set")
	}
	if sheetName == "" {
		sheetName = cfg.GoogleSheetName
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	result, err := cli.OpenBackend(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	ledgerService := services.NewLedgerService(result.Repository, nil, services.WithLogger(logger))
	view, err := ledgerService.Recompute(ctx, userID)
	if err != nil {
		return fmt.Errorf("compute ledger for %s: %w", userID, err)
	}

	var (
		writer sheets.ValuesWriter
		dump   *memory.Writer
	)
	if dryRun {
		dump = memory.New()
		writer = dump
	} else {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return fmt.Errorf("sheets client: %w", err)
		}
		writer = client
	}

	exporter, err := sheets.NewExporter(writer, sheetName, logger)
	if err != nil {
		return err
	}
	if err := exporter.Export(ctx, userID, view); err != nil {
		return err
	}

	if dump != nil {
		return dump.Dump(os.Stdout, exporter.Range("A1"))
	}
	return nil
}
