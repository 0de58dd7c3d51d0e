package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rentledger/internal/amqp"
	"rentledger/internal/config"
	"rentledger/internal/log"
	"rentledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Invalid log level", log.FieldError, err)
		os.Exit(1)
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting rentledger-audit", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the audit worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	auditFile, err := worker.OpenAuditLog(cfg.AuditLogPath())
	if err != nil {
		logger.Error("Failed to open audit log", log.FieldError, err, log.FieldPath, cfg.AuditLogPath())
		os.Exit(1)
	}
	defer auditFile.Close()

	logger.Info("Audit log opened", log.FieldPath, cfg.AuditLogPath())

	auditWorker := worker.NewAuditWorker(auditFile, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeLedgerEvents(ctx, func(event *amqp.LedgerEvent) error {
			return auditWorker.HandleEvent(ctx, event)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Audit worker stopped")
}
