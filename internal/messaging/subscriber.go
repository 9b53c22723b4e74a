package messaging

import (
	"context"

	"github.com/growthplane/ltv-engine/internal/domain"
)

// ImportHandler is called for each dataset-import event received from the broker.
// Returning an error causes the message to be redelivered.
type ImportHandler func(event *domain.DatasetImportedEvent) error

// Subscriber defines the interface for consuming dataset-import events
type Subscriber interface {
	// SubscribeImports starts consuming import events until ctx is cancelled
	SubscribeImports(ctx context.Context, handler ImportHandler) error
	// Close closes the connection and cleans up resources
	Close()
}
