package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Customer represents the customers table - raw customer rows written by the
// dataset ingestor, scoped to one project
type Customer struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions customers per project
	ProjectID string `gorm:"column:project_id;not null;type:text;uniqueIndex:idx_customers_project_customer,priority:1"`
	// CustomerID is the external customer identifier, unique within a project
	CustomerID string `gorm:"column:customer_id;not null;type:text;uniqueIndex:idx_customers_project_customer,priority:2"`
	// AcquisitionDate is when the customer was acquired (nil when unknown)
	AcquisitionDate *time.Time `gorm:"column:acquisition_date"`
	// ChannelSourceID is the primary attribution hint (nil when unset)
	ChannelSourceID *string `gorm:"column:channel_source_id;type:text"`
	// Attributes holds free-form imported columns
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb"`
	// CreatedAt is the timestamp when this row was imported
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
