package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"masarif/internal/amqp"
	"masarif/internal/auth"
	"masarif/internal/cache"
	"masarif/internal/config"
	apphttp "masarif/internal/http"
	"masarif/internal/log"
	"masarif/internal/services"
	"masarif/internal/store"
	"masarif/internal/store/memory"
	"masarif/internal/store/sqlite"
)

func main() {
	// .env is for local development; ignore when absent.
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var (
		st     store.Store
		closer func() error
	)
	switch cfg.DataBackend {
	case "memory":
		st = memory.New()
		closer = func() error { return nil }
	default:
		repo, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = repo
		closer = repo.Close
	}
	defer func() {
		if err := closer(); err != nil {
			logger.Error("failed to close store", log.FieldError, err)
		}
	}()
	logger.Info("store initialized", log.FieldBackend, cfg.DataBackend)

	// The event bus is optional; without a broker the worker features
	// are simply off.
	var events services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			logger.Error("failed to connect to broker", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("event bus connected", log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("event bus disabled, no AMQP_URL provided")
	}

	authSvc := auth.NewService(st, st, cfg.SessionTTL)
	budgets := services.NewBudgetService(st, nil, logger.WithComponent(log.ComponentStore))
	dashboards := services.NewDashboardService(st, budgets, cfg.TrendMonths, cfg.DashboardCacheTTL, logger.WithComponent(log.ComponentCache))
	budgets.SetInvalidator(dashboards)
	expenses := services.NewExpenseService(st, events, dashboards, logger.WithComponent(log.ComponentStore))

	cacheManager := cache.NewManager()
	cacheManager.Register(dashboards.Cache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	// Expired sessions are purged in the background.
	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	defer sessionCancel()
	go purgeSessions(sessionCtx, authSvc, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:       ":" + cfg.Port,
		SessionTTL: cfg.SessionTTL,
	}, authSvc, expenses, budgets, dashboards, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting masarif server", log.FieldPort, cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, log.FieldPort, cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

func purgeSessions(ctx context.Context, authSvc *auth.Service, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := authSvc.PurgeExpired(ctx)
			if err != nil {
				logger.Error("session purge failed", log.FieldError, err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", log.FieldCount, n)
			}
		case <-ctx.Done():
			return
		}
	}
}
