package main

import (
	"context"
	"errors"
	"os"

	"wallet/internal/cli"
	"wallet/internal/export/sheets"
	applog "wallet/internal/log"
	"wallet/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting wallet-exporter")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the exporter")
		os.Exit(1)
	}

	// Another process writes the accounts; never serve them from a cache.
	cfg.AccountCacheSize = 0
	be := cli.InitBackend(context.Background(), logger.WithComponent(applog.ComponentBackend), cfg)
	if be.Publisher == nil {
		logger.Error("AMQP broker unreachable", "url", cfg.AMQPURL)
		_ = be.Cleanup()
		os.Exit(1)
	}

	var opts []worker.Option
	if cfg.SheetsEnabled() {
		client, err := sheets.New(context.Background(), sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		}, logger.WithComponent(applog.ComponentSheets))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			_ = be.Cleanup()
			os.Exit(1)
		}
		opts = append(opts, worker.WithSheets(client))
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	exporter := worker.NewExportWorker(be.Store, cfg.ExportDir, logger.WithComponent(applog.ComponentWorker), opts...)

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	})

	go func() {
		if err := be.Publisher.ConsumeAccountChanged(ctx, exporter.HandleAccountChanged); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
