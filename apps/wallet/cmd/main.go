package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"wallet/apps/wallet/internal/api"
	"wallet/apps/wallet/internal/assets"
	"wallet/apps/wallet/internal/chain"
	"wallet/apps/wallet/internal/config"
	"wallet/apps/wallet/internal/event_publisher"
	"wallet/apps/wallet/internal/repository"
	"wallet/apps/wallet/internal/tracker"
)

func main() {
	// Initialize zap logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// Load configuration from environment variables
	cfg := config.NewConfig()

	logger.Info("Starting application with configuration",
		zap.String("rpc_url", cfg.RpcURL),
		zap.String("db_url", cfg.DbURL),
		zap.String("kafka_broker", cfg.KafkaBroker),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.Int64("chain_id", cfg.ChainID),
		zap.Int("api_port", cfg.APIPort),
	)

	logger.Warn("Wallet private keys and mnemonics are persisted without encryption at rest")

	// Connect to database
	db, err := sql.Open("postgres", cfg.DbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize database tables
	if err := repository.InitMigration(db); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	walletRepository := repository.NewWalletRepository(db, logger)
	transferRepository := repository.NewTransferRepository(db, logger)
	outboxRepository := repository.NewOutboxRepository(db, logger)

	// Connect to the chain RPC endpoint
	gateway, err := chain.NewGateway(cfg.RpcURL, cfg.ChainID)
	if err != nil {
		logger.Fatal("Failed to connect to chain RPC", zap.Error(err))
	}
	defer gateway.Close()

	// Create transfer tracker
	transferTracker := tracker.NewTracker(gateway, transferRepository, outboxRepository, assets.GlobalRegistry, logger)

	// Create event publisher
	eventPublisher, err := event_publisher.NewEventPublisher(cfg.KafkaBroker, cfg.KafkaTopic, logger, outboxRepository)
	if err != nil {
		logger.Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer eventPublisher.Close()

	// Start event publisher in background
	go eventPublisher.StartPublishing()

	// Create and start API server
	apiServer := api.NewServer(cfg.APIPort, walletRepository, transferTracker, gateway, assets.GlobalRegistry, cfg.ReturnSecrets, logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Received shutdown signal, starting graceful shutdown...")

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown API server gracefully
	if err := apiServer.Stop(ctx); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}

	logger.Info("Application shutdown complete")
}
