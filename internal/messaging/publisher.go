package messaging

import (
	"context"

	"github.com/growthplane/ltv-engine/internal/domain"
)

// Publisher defines the interface for publishing engine events to the message broker
type Publisher interface {
	// PublishMetricsRecomputed announces a successful materialization
	PublishMetricsRecomputed(ctx context.Context, event *domain.MetricsRecomputedEvent) error
	// Close closes the connection
	Close()
}
