package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/rates"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: memory).
	var (
		txStore     services.TransactionStore
		budgetStore services.BudgetStore
	)
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		txStore, budgetStore = repo, repo
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	default:
		store := storage.NewMemoryStore()
		txStore, budgetStore = store, store
		logger.Info("Initialized memory backend")
	}

	// Rate cache and converter shared by everything that touches money.
	provider := rates.NewHTTPProvider(cfg.RatesURL, cfg.RatesTimeout)
	rateCache := rates.NewCache(provider, cfg.RatesTTL)
	converter := rates.NewConverter(rateCache)

	budgetService := services.NewBudgetService(budgetStore, txStore, converter)
	dashboardService := services.NewDashboardService(txStore, budgetStore, converter)
	transactionService := services.NewTransactionService(txStore)

	// AMQP alert publishing is optional; without it the scanner degrades to
	// warn logs.
	var alertPublisher services.AlertPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without alerts", "error", err)
		} else {
			defer amqpClient.Close()
			alertPublisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	scanner := services.NewAlertScanner(budgetService, budgetStore, alertPublisher)

	// Warm the cache so the first request doesn't pay for the provider call.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RatesTimeout+5*time.Second)
		defer cancel()
		if err := rateCache.Refresh(ctx); err != nil {
			logger.Warn("Initial rate refresh degraded", "error", err)
		}
	}()

	// Background schedules: keep the snapshot fresh, publish over-budget
	// alerts.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.RateRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RatesTimeout+5*time.Second)
		defer cancel()
		if err := rateCache.Refresh(ctx); err != nil {
			logger.Warn("Scheduled rate refresh degraded", "error", err)
		}
	}); err != nil {
		logger.Error("Failed to schedule rate refresh", "error", err, "schedule", cfg.RateRefreshSchedule)
		os.Exit(1)
	}
	if _, err := sched.AddFunc(cfg.AlertScanSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := scanner.Scan(ctx); err != nil {
			logger.Error("Budget alert scan failed", "error", err)
		}
	}); err != nil {
		logger.Error("Failed to schedule alert scan", "error", err, "schedule", cfg.AlertScanSchedule)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, rateCache, converter, budgetService, dashboardService, transactionService)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
