package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"masarif/internal/amqp"
	"masarif/internal/config"
	"masarif/internal/export"
	exportgoogle "masarif/internal/export/google"
	"masarif/internal/log"
	"masarif/internal/services"
	"masarif/internal/store/sqlite"
	"masarif/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close store", log.FieldError, err)
		}
	}()

	budgets := services.NewBudgetService(repo, nil, logger.WithComponent(log.ComponentStore))
	dashboards := services.NewDashboardService(repo, budgets, cfg.TrendMonths, cfg.DashboardCacheTTL, logger.WithComponent(log.ComponentCache))

	// Report export is optional and only active with a spreadsheet ID.
	var reports export.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := exportgoogle.New(ctx, exportgoogle.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleReportSheet,
		}, logger.WithComponent(log.ComponentExport))
		if err != nil {
			logger.Error("failed to create sheets client", log.FieldError, err)
			os.Exit(1)
		}
		reports = client
		logger.Info("report export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("report export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("failed to connect to broker", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	alertWorker := worker.NewAlertWorker(repo, dashboards, budgets, reports, logger)

	logger.Info("starting masarif worker",
		log.FieldExchange, cfg.AMQPExchange,
		log.FieldQueue, cfg.AMQPQueue,
		"reeval_interval", cfg.ReevalInterval.String())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExpenseEvents(ctx, alertWorker.HandleExpenseEvent)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReevalInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				alertWorker.Reevaluate(ctx)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
