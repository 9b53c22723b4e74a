package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ActionPlan represents the action_plans table - spend reallocation
// recommendations. A plan is immutable once approved or exported except for
// the append-only timestamps.
type ActionPlan struct {
	// PlanID is the plan identifier (UUID)
	PlanID string `gorm:"column:plan_id;primaryKey;type:text"`
	// ProjectID partitions plans per project
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_action_plans_project"`
	// Objective is the strategy label the plan was built with
	Objective string `gorm:"column:objective;not null;type:text"`
	// Items is the JSON list of per-channel line items
	Items datatypes.JSON `gorm:"column:items;type:jsonb;not null"`
	// CreatedAt is when the plan was generated
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// ApprovedAt is set once when the plan is approved
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	// ExportedAt is set once when the plan is exported
	ExportedAt *time.Time `gorm:"column:exported_at"`
}

// TableName specifies the table name for the ActionPlan model
func (ActionPlan) TableName() string {
	return "action_plans"
}
