package domain

import "time"

// Segment represents the LTV tier a customer is assigned to
type Segment string

const (
	// SegmentHigh is the top LTV tier
	SegmentHigh Segment = "HIGH"
	// SegmentMid is the middle LTV tier
	SegmentMid Segment = "MID"
	// SegmentLow is the bottom LTV tier
	SegmentLow Segment = "LOW"
)

// Segments lists all segments in display order
var Segments = []Segment{SegmentHigh, SegmentMid, SegmentLow}

// AttributionMode selects how customers are mapped to acquisition channels
type AttributionMode string

const (
	// AttributionChannelField uses Customer.ChannelSourceID, falling back to
	// acquired-via edges only when no customer carries a field value
	AttributionChannelField AttributionMode = "channel_field"
	// AttributionAcquiredVia uses explicit acquired-via edges, first edge per customer wins
	AttributionAcquiredVia AttributionMode = "acquired_via"
)

// SpendSource selects where per-channel spend figures come from
type SpendSource string

const (
	// SpendSourceDaily sums channel_spend_daily rows, optionally within a lookback window
	SpendSourceDaily SpendSource = "daily"
	// SpendSourceChannelTotal uses Channel.BudgetSpend as the total spend figure
	SpendSourceChannelTotal SpendSource = "channel_total"
)

// Strategy identifies a spend reallocation heuristic
type Strategy string

const (
	StrategyHighEfficiency  Strategy = "high_efficiency"
	StrategyMaximizeRevenue Strategy = "maximize_revenue"
	StrategyStability       Strategy = "stability"
)

// IsValidStrategy checks if a strategy selector is known
func IsValidStrategy(s Strategy) bool {
	return s == StrategyHighEfficiency || s == StrategyMaximizeRevenue || s == StrategyStability
}

// JobStatus represents the lifecycle state of a recompute job
type JobStatus string

const (
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// AuditTypeRecompute is the audit record kind written after a successful materialization
const AuditTypeRecompute = "RECOMPUTE"

// ModelConfig holds the active computation parameters for a project.
// A nil LTVWindowDays means the revenue window is unlimited; a nil
// CACLookbackDays means daily spend is summed without restriction.
type ModelConfig struct {
	LTVWindowDays       *int
	ChurnEventTypes     []string
	SegmentHighQuantile float64
	SegmentMidQuantile  float64
	AttributionMode     AttributionMode
	CACSpendSource      SpendSource
	CACLookbackDays     *int
}

// DefaultModelConfig returns the documented fallback configuration used
// when a project has no active config row
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		LTVWindowDays:       nil,
		ChurnEventTypes:     []string{"churned"},
		SegmentHighQuantile: 0.8,
		SegmentMidQuantile:  0.5,
		AttributionMode:     AttributionChannelField,
		CACSpendSource:      SpendSourceDaily,
		CACLookbackDays:     nil,
	}
}

// Normalize replaces malformed fields with their defaults so a bad config
// row degrades instead of aborting a recompute. Quantiles must lie in (0,1)
// with high >= mid; they are replaced as a pair when either is invalid.
func (c ModelConfig) Normalize() ModelConfig {
	def := DefaultModelConfig()

	if !validQuantile(c.SegmentHighQuantile) || !validQuantile(c.SegmentMidQuantile) ||
		c.SegmentHighQuantile < c.SegmentMidQuantile {
		c.SegmentHighQuantile = def.SegmentHighQuantile
		c.SegmentMidQuantile = def.SegmentMidQuantile
	}

	if c.AttributionMode != AttributionChannelField && c.AttributionMode != AttributionAcquiredVia {
		c.AttributionMode = def.AttributionMode
	}

	if c.CACSpendSource != SpendSourceDaily && c.CACSpendSource != SpendSourceChannelTotal {
		c.CACSpendSource = def.CACSpendSource
	}

	if c.LTVWindowDays != nil && *c.LTVWindowDays < 0 {
		c.LTVWindowDays = nil
	}
	if c.CACLookbackDays != nil && *c.CACLookbackDays < 0 {
		c.CACLookbackDays = nil
	}

	if c.ChurnEventTypes == nil {
		c.ChurnEventTypes = def.ChurnEventTypes
	}

	return c
}

func validQuantile(q float64) bool {
	return q > 0 && q < 1
}

// PlanItem is one channel line of an action plan
type PlanItem struct {
	ChannelID     string  `json:"channel_id"`
	CurrentSpend  float64 `json:"current_spend"`
	ProposedSpend float64 `json:"proposed_spend"`
	Delta         float64 `json:"delta"`
	Rationale     string  `json:"rationale"`
}

// DatasetImportedEvent is published by the ingestor after a dataset import
// finishes; the worker reacts by enqueueing a recompute for the project
type DatasetImportedEvent struct {
	ProjectID  string    `json:"project_id"`
	EntityType string    `json:"entity_type"`
	RowCount   int       `json:"row_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// MetricsRecomputedEvent is published after a successful materialization
// so downstream dashboards can refresh
type MetricsRecomputedEvent struct {
	ProjectID    string    `json:"project_id"`
	JobID        string    `json:"job_id"`
	ModelVersion string    `json:"model_version"`
	Customers    int       `json:"customers"`
	Channels     int       `json:"channels"`
	Timestamp    time.Time `json:"timestamp"`
}
