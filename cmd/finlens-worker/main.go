package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finlens/internal/amqp"
	"finlens/internal/cli"
	gsheet "finlens/internal/sheets/google"
	"finlens/internal/storage"
	"finlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting finlens-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exportWorker := worker.NewExportWorker(repo, sheetsClient, sheetsClient, cfg.ExportBatchSize)

	// On startup, re-export anything updated while the worker was down.
	logger.Info("Performing startup catch-up...")
	if err := exportWorker.CatchUp(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		logger.Error("Startup catch-up failed", "error", err)
		// continue with normal operation
	}

	go func() {
		handler := func(event *amqp.ExportEvent) error {
			return exportWorker.HandleExportEvent(ctx, event)
		}
		if err := amqpClient.ConsumeExportEvents(ctx, handler); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", "error", err)
			}
			cancel()
		}
	}()

	// Periodic catch-up for any missed events.
	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	go func() {
		lastRun := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := exportWorker.CatchUp(ctx, lastRun); err != nil {
					logger.Error("Periodic catch-up failed", "error", err)
				}
				lastRun = now
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(5 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
