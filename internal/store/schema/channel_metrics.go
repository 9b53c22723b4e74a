package schema

import "time"

// ChannelMetrics represents the channel_metrics table - the per-channel
// derived row. Only channels with at least one attributed customer appear.
type ChannelMetrics struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions metrics per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_channel_metrics_project"`
	// ChannelID is the external channel identifier
	ChannelID string `gorm:"column:channel_id;not null;type:text"`
	// CAC is spend divided by acquired customers (0 when the group is empty)
	CAC float64 `gorm:"column:cac;not null"`
	// Spend is the resolved spend for this channel under the configured source
	Spend float64 `gorm:"column:spend;not null"`
	// AcquiredCustomers is the number of customers attributed to this channel
	AcquiredCustomers int `gorm:"column:acquired_customers;not null"`
	// HighLTVCustomers is the number of attributed customers in the HIGH segment
	HighLTVCustomers int `gorm:"column:high_ltv_customers;not null"`
	// HighLTVShare is HighLTVCustomers / AcquiredCustomers
	HighLTVShare float64 `gorm:"column:high_ltv_share;not null"`
	// AvgLTV is the mean LTV across attributed customers
	AvgLTV float64 `gorm:"column:avg_ltv;not null"`
	// NetValue is AvgLTV minus CAC
	NetValue float64 `gorm:"column:net_value;not null"`
	// ComputedAt is when the materialization ran
	ComputedAt time.Time `gorm:"column:computed_at;not null"`
	// ModelVersion tags the materialization that produced this row
	ModelVersion string `gorm:"column:model_version;not null;type:text"`
}

// TableName specifies the table name for the ChannelMetrics model
func (ChannelMetrics) TableName() string {
	return "channel_metrics"
}
