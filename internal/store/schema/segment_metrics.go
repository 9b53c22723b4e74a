package schema

import "time"

// SegmentMetrics represents the segment_metrics table - one derived row per
// non-empty LTV segment
type SegmentMetrics struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions metrics per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_segment_metrics_project"`
	// Segment is the tier key (HIGH, MID, LOW)
	Segment string `gorm:"column:segment;not null;type:text"`
	// CustomerCount is the number of customers in the segment
	CustomerCount int `gorm:"column:customer_count;not null"`
	// AvgLTV is the mean LTV across the segment
	AvgLTV float64 `gorm:"column:avg_ltv;not null"`
	// TotalRevenue is the summed LTV across the segment
	TotalRevenue float64 `gorm:"column:total_revenue;not null"`
	// ComputedAt is when the materialization ran
	ComputedAt time.Time `gorm:"column:computed_at;not null"`
	// ModelVersion tags the materialization that produced this row
	ModelVersion string `gorm:"column:model_version;not null;type:text"`
}

// TableName specifies the table name for the SegmentMetrics model
func (SegmentMetrics) TableName() string {
	return "segment_metrics"
}
