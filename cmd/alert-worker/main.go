package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

// alert-worker drains budget-alert messages published by the main service.
// For now delivery is a structured log line per alert; a mail or push
// integration would slot in behind the same handler.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: "alert-worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting alert-worker")

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err = amqpClient.ConsumeBudgetAlerts(ctx, func(msg *amqp.BudgetAlertMessage) error {
		logger.Info("Budget over limit",
			"user_id", msg.UserID,
			"budget_id", msg.BudgetID,
			"category", msg.Category,
			"limit", msg.LimitAmount,
			"spent", msg.Spent,
			"currency", msg.Currency,
			"month", msg.Month,
			"year", msg.Year)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumption stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert-worker stopped gracefully")
}
