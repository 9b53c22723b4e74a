package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/growthplane/ltv-engine/internal/adapter"
	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/logger"
	"github.com/growthplane/ltv-engine/internal/messaging"
)

// SubscriberConfig holds the consumer-side settings on top of the connection Config
type SubscriberConfig struct {
	Config
	ConsumerName   string
	AckWaitTimeout time.Duration
	MaxDeliver     int
}

type subscriber struct {
	nc  adapter.NatsConn
	js  adapter.JetStream
	cfg SubscriberConfig
}

// NewSubscriber creates a new NATS JetStream subscriber for dataset-import events
func NewSubscriber(cfg SubscriberConfig, natsJS adapter.NatsJetStream) (messaging.Subscriber, error) {
	nc, js, err := connect(cfg.Config, natsJS)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		nc:  nc,
		js:  js,
		cfg: cfg,
	}, nil
}

// SubscribeImports starts consuming import events until ctx is cancelled
func (s *subscriber) SubscribeImports(ctx context.Context, handler messaging.ImportHandler) error {
	consumerConfig := jetstream.ConsumerConfig{
		Durable:       s.cfg.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       s.cfg.AckWaitTimeout,
		MaxDeliver:    s.cfg.MaxDeliver,
		FilterSubject: SubjectDatasetImported,
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	sub, err := consumer.Consume(func(msg adapter.Message) {
		s.handleMessage(msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming import events",
		zap.String("stream", s.cfg.StreamName),
		zap.String("consumer", s.cfg.ConsumerName))

	<-ctx.Done()
	return ctx.Err()
}

func (s *subscriber) handleMessage(msg adapter.Message, handler messaging.ImportHandler) {
	var event domain.DatasetImportedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.Error(err, zap.String("message", "Failed to unmarshal import event"))
		// Unparseable payloads will never succeed, drop them
		if err := msg.Term(); err != nil {
			logger.Error(err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	logger.Info("Received import event",
		zap.String("projectID", event.ProjectID),
		zap.String("entityType", event.EntityType),
		zap.Int("rowCount", event.RowCount))

	if err := handler(&event); err != nil {
		logger.Error(err, zap.String("message", "Failed to handle import event"))
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

// Close closes the NATS connection
func (s *subscriber) Close() {
	if s.nc == nil {
		return
	}

	s.nc.Close()
}
