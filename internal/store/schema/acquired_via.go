package schema

// AcquiredVia represents the acquired_via table - explicit customer-to-channel
// acquisition edges, an alternative to Customer.ChannelSourceID
type AcquiredVia struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions edges per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_acquired_via_project,priority:1"`
	// CustomerID references the acquired customer
	CustomerID string `gorm:"column:customer_id;not null;type:text;index:idx_acquired_via_project,priority:2"`
	// ChannelID references the acquiring channel
	ChannelID string `gorm:"column:channel_id;not null;type:text"`
	// Weight is an optional edge weight; unused by single-assignment attribution
	Weight *float64 `gorm:"column:weight"`
	// AttributionModel is an optional free-form model tag
	AttributionModel *string `gorm:"column:attribution_model;type:text"`
}

// TableName specifies the table name for the AcquiredVia model
func (AcquiredVia) TableName() string {
	return "acquired_via"
}
