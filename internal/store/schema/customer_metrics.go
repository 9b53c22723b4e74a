package schema

import "time"

// CustomerMetrics represents the customer_metrics table - the per-customer
// derived row. Rows are only ever written by a full materialization.
type CustomerMetrics struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions metrics per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_customer_metrics_project"`
	// CustomerID is the external customer identifier
	CustomerID string `gorm:"column:customer_id;not null;type:text"`
	// LTV is the summed qualifying revenue
	LTV float64 `gorm:"column:ltv;not null"`
	// LTVSegment is the assigned tier (HIGH, MID, LOW)
	LTVSegment string `gorm:"column:ltv_segment;not null;type:text"`
	// TxnCount is the number of qualifying transactions
	TxnCount int `gorm:"column:txn_count;not null"`
	// FirstPurchaseDate is the earliest qualifying transaction date (nil when none)
	FirstPurchaseDate *time.Time `gorm:"column:first_purchase_date"`
	// LastPurchaseDate is the latest qualifying transaction date (nil when none)
	LastPurchaseDate *time.Time `gorm:"column:last_purchase_date"`
	// ComputedAt is when the materialization ran
	ComputedAt time.Time `gorm:"column:computed_at;not null"`
	// ModelVersion tags the materialization that produced this row
	ModelVersion string `gorm:"column:model_version;not null;type:text"`
}

// TableName specifies the table name for the CustomerMetrics model
func (CustomerMetrics) TableName() string {
	return "customer_metrics"
}
