package main

import (
	"context"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	memsheet "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting fintrack-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext()
	defer stop()

	if cfg.DataBackend == "memory" {
		logger.Warn("Worker is using a private in-memory store; exports will not see API writes",
			"backend", cfg.DataBackend)
	}
	store := cli.InitStore(ctx, logger, cfg)

	// Read-only use: the worker never publishes.
	recordService := services.NewRecordService(store.Store, nil)
	defer func() {
		if err := recordService.Close(); err != nil {
			logger.Error("Failed to close record service", applog.FieldError, err)
		}
	}()

	exporter := newExporter(ctx, logger, cfg)
	exportWorker := worker.NewExportWorker(recordService, exporter)

	var consumer worker.ChangeConsumer
	if client := cli.InitAMQP(logger, cfg, true); client != nil {
		consumer = client
		defer func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close AMQP client", applog.FieldError, err)
			}
		}()
	}

	if err := exportWorker.Run(ctx, consumer, cfg.ExportSchedule); err != nil {
		logger.Error("Export worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

// newExporter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory one otherwise.
func newExporter(ctx context.Context, logger *applog.Logger, cfg *config.Config) sheets.InsightExporter {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided; exports stay in memory")
		return memsheet.New()
	}

	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		InsightsSheet:      cfg.GoogleInsightsSheet,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		applog.FieldComponent, applog.ComponentSheets,
		"spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
