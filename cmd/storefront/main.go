package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gamekey-storefront/internal/config"
	"github.com/gamekey-storefront/internal/data/postgres"
	"github.com/gamekey-storefront/internal/keygen"
	"github.com/gamekey-storefront/internal/logger"
	"github.com/gamekey-storefront/internal/platform/messaging/producers"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/gamekey-storefront/internal/storefront"
	"github.com/gamekey-storefront/internal/storefront/components"
	"github.com/gamekey-storefront/internal/storefront/outbox_poller"
	"github.com/gamekey-storefront/internal/storefront/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("storefront")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Storefront",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the receipt topic
	receiptProducer, err := producers.NewReceiptMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize receipt Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	cartRepo := postgres.NewCartRepository(log, postgresDB)
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	gameRepo := postgres.NewGameRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize transactional components
	keyGenerator := keygen.NewGenerator()
	walletLedger := components.NewWalletLedger(log, postgresDB, walletRepo, ledgerRepo, outboxRepo)
	purchasePersister := components.NewPurchasePersister(log, postgresDB, orderRepo, outboxRepo, keyGenerator, cfg.Checkout.MaxKeyAttempts)

	// Initialize services
	walletService := service.NewWalletService(log, walletLedger, ledgerRepo)
	cartService := service.NewCartService(log, cartRepo, orderRepo, gameRepo)
	orderService := service.NewOrderService(log, orderRepo)
	checkoutService := service.NewCheckoutService(log, &cfg.Checkout, cartRepo, orderRepo, gameRepo, walletLedger, purchasePersister, keyGenerator)

	// Initialize outbox poller
	receiptPublisher := outbox_poller.NewReceiptPublisher(outboxRepo, receiptProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, receiptPublisher, log)

	// Initialize REST server
	server := storefront.NewServer(log, cfg, walletService, cartService, orderService, checkoutService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the poller to stop
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = receiptProducer.Close(); err != nil {
		log.Error("Error closing receipt Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Storefront shutdown completed with errors")
	} else {
		log.Info("Storefront shutdown completed successfully")
	}
}
