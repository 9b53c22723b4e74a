package pipeline

import (
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// Snapshot is the full in-memory view of one project's raw tables that a
// recompute runs over. It is read once up front; the pipeline never touches
// the store mid-computation.
type Snapshot struct {
	Customers    []schema.Customer
	Transactions []schema.Transaction
	Channels     []schema.Channel
	Events       []schema.Event
	AcquiredVia  []schema.AcquiredVia
	DailySpend   []schema.ChannelSpendDaily
}

// Result holds the freshly computed derived rows of one recompute. ProjectID,
// ComputedAt and ModelVersion are stamped by the materialization writer.
type Result struct {
	CustomerMetrics []schema.CustomerMetrics
	SegmentMetrics  []schema.SegmentMetrics
	ChannelMetrics  []schema.ChannelMetrics
}
