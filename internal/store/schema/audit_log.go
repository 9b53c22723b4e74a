package schema

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents the audit_logs table - append-only records of derived
// table rewrites. A RECOMPUTE entry is written only on success, in the same
// transaction as the materialization.
type AuditLog struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProjectID partitions audit entries per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_audit_logs_project"`
	// Type is the audit record kind (RECOMPUTE)
	Type string `gorm:"column:type;not null;type:text"`
	// Payload carries the record body, e.g. {customers, channels} counts
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// TS is when the record was written
	TS time.Time `gorm:"column:ts;not null"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
