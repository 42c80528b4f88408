package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/personal-finance-ledger/internal/activity"
	"github.com/personal-finance-ledger/internal/api_gateway"
	"github.com/personal-finance-ledger/internal/api_gateway/handler"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/data/memory"
	"github.com/personal-finance-ledger/internal/data/mongo"
	"github.com/personal-finance-ledger/internal/data/postgres"
	"github.com/personal-finance-ledger/internal/domain/ledger"
	"github.com/personal-finance-ledger/internal/logger"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
	"github.com/personal-finance-ledger/internal/platform/persistence"
	"github.com/personal-finance-ledger/internal/seed"
)

// backend is the selected event store plus what it takes to check and release it
type backend struct {
	store  ledger.EventStore
	pinger handler.Pinger
	close  func(ctx context.Context) error
}

func openBackend(ctx context.Context, log *slog.Logger, cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return &backend{
			store:  postgres.NewEventStore(logger.WithComponent(log, "postgres_store"), db),
			pinger: db,
			close:  func(context.Context) error { db.Close(); return nil },
		}, nil

	case config.StoreMongo:
		db, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		store := mongo.NewEventStore(logger.WithComponent(log, "mongo_store"), db.Database())
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return &backend{store: store, pinger: db, close: db.Close}, nil

	default:
		return &backend{
			store: memory.NewEventStore(logger.WithComponent(log, "memory_store")),
			close: func(context.Context) error { return nil },
		}, nil
	}
}

func openPublisher(ctx context.Context, log *slog.Logger, cfg *config.Config) (producers.MessagePublisher, error) {
	if !cfg.Kafka.Enabled {
		return producers.NopPublisher{}, nil
	}

	producer, err := producers.NewRecordEventProducer(ctx, logger.WithComponent(log, "record_producer"), &cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}

	async, err := producers.NewAsyncPublisher(producer, cfg.WorkerPool.Size, cfg.Kafka.WriteTimeout, log)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}
	return async, nil
}

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting ledger API", "store", cfg.Store.Backend, "kafka_enabled", cfg.Kafka.Enabled)

	be, err := openBackend(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open event store", "error", err)
		os.Exit(1)
	}

	publisher, err := openPublisher(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open event publisher", "error", err)
		_ = be.close(context.Background())
		os.Exit(1)
	}

	recent := activity.NewIndex(be.store, ledger.RecentActivityKey, cfg.Ledger.RecentActivityLimit)

	ledgerService := service.NewLedgerService(
		logger.WithComponent(log, "ledger_service"), be.store, recent, publisher, cfg.Ledger.CurrencySymbol)
	summaryService := service.NewSummaryService(
		logger.WithComponent(log, "summary_service"), be.store, cfg.Budgets.Limits)

	if cfg.Application.SeedSampleData {
		if _, err := seed.Load(appCtx, log, ledgerService, time.Now()); err != nil {
			log.Error("Failed to load sample data", "error", err)
		}
	}

	server := api_gateway.NewServer(log, cfg, ledgerService, summaryService, be.pinger)

	errChan := make(chan error, 1)
	go func() {
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
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	var shutdownErr error
	// Stop accepting writes before draining publications and closing the store
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}
	if err := publisher.Close(); err != nil {
		log.Error("Error closing event publisher", "error", err)
		shutdownErr = err
	}
	if err := be.close(shutdownCtx); err != nil {
		log.Error("Error closing event store", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Shutdown completed successfully")
}
