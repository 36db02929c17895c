package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetbot/internal/amqp"
	"budgetbot/internal/config"
	"budgetbot/internal/log"
	gsheet "budgetbot/internal/sheets/google"
	"budgetbot/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting sync-worker")

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the sync worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sheetsClient)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Consuming transaction sync messages",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	err = amqpClient.ConsumeTransactions(ctx, func(msg *amqp.TransactionMessage) error {
		return syncWorker.HandleSyncMessage(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Sync-worker shutdown complete")
}
