package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/growthplane/ltv-engine/internal/adapter"
	"github.com/growthplane/ltv-engine/internal/config"
	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/logger"
	"github.com/growthplane/ltv-engine/internal/providers/jetstream"
	"github.com/growthplane/ltv-engine/internal/recompute"
	"github.com/growthplane/ltv-engine/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting LTV Engine Worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	natsConfig := jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "ltv-engine-worker",
	}

	// Publisher for metrics.recomputed events
	publisher, err := jetstream.NewPublisher(natsConfig, adapter.NewNatsJetStream())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	// Subscriber for datasets.imported events
	subscriber, err := jetstream.NewSubscriber(jetstream.SubscriberConfig{
		Config:         natsConfig,
		ConsumerName:   cfg.NATS.ConsumerName,
		AckWaitTimeout: cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
	}, adapter.NewNatsJetStream())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create import subscriber", zap.Error(err))
	}
	defer subscriber.Close()
	logger.InfoCtx(ctx, "Connected to NATS",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName),
	)

	// Initialize recompute service
	svc := recompute.NewService(dataStore, publisher, adapter.NewClock(), recompute.Config{
		MaxWorkers:     cfg.Recompute.MaxWorkers,
		QueueSize:      cfg.Recompute.QueueSize,
		PublishTimeout: cfg.Recompute.PublishTimeout,
	})

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for subscriber errors
	errCh := make(chan error, 1)

	// Consume import events, each one triggers a recompute for its project
	go func() {
		err := subscriber.SubscribeImports(ctx, func(event *domain.DatasetImportedEvent) error {
			jobID, err := svc.Enqueue(ctx, event.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to enqueue recompute: %w", err)
			}

			logger.InfoCtx(ctx, "Enqueued recompute for imported dataset",
				zap.String("project_id", event.ProjectID),
				zap.String("entity_type", event.EntityType),
				zap.Int("row_count", event.RowCount),
				zap.String("job_id", jobID),
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "subscriber"))
		cancel()
	}

	// Drain in-flight recompute jobs
	svc.Stop()

	logger.Info("Worker stopped")
}
