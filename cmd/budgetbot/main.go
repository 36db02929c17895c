package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetbot/internal/backend"
	"budgetbot/internal/bot"
	"budgetbot/internal/config"
	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
	"budgetbot/internal/log"
	signaladapter "budgetbot/internal/signal"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting budgetbot")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(backend.Config{
		Type:         backend.BackendType(cfg.StateBackend),
		StateFile:    cfg.StateFile,
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	})
	if err != nil {
		logger.Error("Failed to initialize persistence backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := result.Repository.Load(ctx)
	if err != nil {
		logger.Error("Failed to load ledger state", "error", err)
		os.Exit(1)
	}
	logger.Info("Ledger loaded",
		"balance", state.Balance.StringFixed(2),
		"weekly_amount", state.WeeklyAmount.StringFixed(2),
		"last_accrual", state.LastAccrual.Format(core.DateFormat),
		"history_entries", len(state.History))

	ledg := ledger.New(result.Repository, state, result.Recorder)

	channel := signaladapter.NewClient(cfg.SignalAPIBase, cfg.SignalNumber, cfg.SignalRecipient, cfg.HTTPTimeout)

	b := bot.New(channel, ledg, cfg.PollInterval, cfg.AccrualInterval)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Bot running",
		"poll_interval", cfg.PollInterval,
		"accrual_interval", cfg.AccrualInterval,
		"backend", cfg.StateBackend)

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Budgetbot shutdown complete")
}
