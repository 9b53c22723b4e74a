package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ModelConfig represents the model_configs table - computation parameters per
// project. The row with Active=true is the one a recompute reads.
type ModelConfig struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions configs per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index"`
	// Active marks the config a recompute should use
	Active bool `gorm:"column:active;not null;default:false"`
	// LTVWindowDays bounds revenue counting relative to acquisition (nil = unlimited)
	LTVWindowDays *int `gorm:"column:ltv_window_days"`
	// ChurnEventTypes is the JSON array of event types that count as churn
	ChurnEventTypes datatypes.JSON `gorm:"column:churn_event_types;type:jsonb"`
	// SegmentHighQuantile is the population quantile for the HIGH threshold
	SegmentHighQuantile float64 `gorm:"column:segment_high_quantile;not null"`
	// SegmentMidQuantile is the population quantile for the MID threshold
	SegmentMidQuantile float64 `gorm:"column:segment_mid_quantile;not null"`
	// AttributionMode selects channel_field or acquired_via attribution
	AttributionMode string `gorm:"column:attribution_mode;not null;type:text"`
	// CACSpendSource selects daily or channel_total spend resolution
	CACSpendSource string `gorm:"column:cac_spend_source;not null;type:text"`
	// CACLookbackDays restricts daily spend to a trailing window (nil = all)
	CACLookbackDays *int `gorm:"column:cac_lookback_days"`
	// UpdatedAt is the timestamp of the last config change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the ModelConfig model
func (ModelConfig) TableName() string {
	return "model_configs"
}
