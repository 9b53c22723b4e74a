package schema

import "time"

// Event represents the events table - lifecycle events used for churn detection
type Event struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions events per project
	ProjectID string `gorm:"column:project_id;not null;type:text;uniqueIndex:idx_events_project_event,priority:1"`
	// EventID is the external event identifier, unique within a project
	EventID string `gorm:"column:event_id;not null;type:text;uniqueIndex:idx_events_project_event,priority:2"`
	// CustomerID references the customer the event belongs to
	CustomerID string `gorm:"column:customer_id;not null;type:text"`
	// Type is a free-form event tag; only types in the configured churn set matter
	Type string `gorm:"column:type;not null;type:text"`
	// Date is when the event occurred
	Date time.Time `gorm:"column:date;not null"`
}

// TableName specifies the table name for the Event model
func (Event) TableName() string {
	return "events"
}
