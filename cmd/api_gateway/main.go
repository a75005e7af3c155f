package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corebank-ledger/internal/api_gateway"
	"github.com/corebank-ledger/internal/api_gateway/service"
	"github.com/corebank-ledger/internal/config"
	"github.com/corebank-ledger/internal/data/mongo"
	"github.com/corebank-ledger/internal/data/postgres"
	"github.com/corebank-ledger/internal/ledger"
	"github.com/corebank-ledger/internal/logger"
	"github.com/corebank-ledger/internal/platform/messaging/producers"
	"github.com/corebank-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Publishes async transaction intents to the intent topic
	intentProducer, err := producers.NewIntentProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	auditStore := mongo.NewAuditRepository(log, mongoDB.Database())

	mutator := ledger.NewBalanceMutator(log, postgresDB, accountRepo, auditStore)
	orchestrator := ledger.NewOrchestrator(log, transactionRepo, mutator, auditStore)

	accountService := service.NewAccountService(log, accountRepo, auditStore)
	transactionService := service.NewTransactionService(log, orchestrator, transactionRepo, intentProducer)
	auditService := service.NewAuditService(auditStore)

	server := api_gateway.NewServer(log, cfg, accountService, transactionService, auditService)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = intentProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("API Gateway shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("API Gateway shutdown completed successfully")
}
