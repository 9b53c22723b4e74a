package schema

import "time"

// JobRecord represents the job_records table - advisory status of recompute
// jobs. Transitions RUNNING -> COMPLETED or RUNNING -> FAILED; the phase
// string is progress telemetry, not a control interface.
type JobRecord struct {
	// JobID is the job identifier (UUID)
	JobID string `gorm:"column:job_id;primaryKey;type:text"`
	// ProjectID is the project the job recomputes
	ProjectID string `gorm:"column:project_id;not null;type:text;index:idx_job_records_project"`
	// Status is the lifecycle state (RUNNING, COMPLETED, FAILED)
	Status string `gorm:"column:status;not null;type:text"`
	// Phase is a free-text progress marker for display
	Phase string `gorm:"column:phase;type:text"`
	// Error carries the failure message when Status is FAILED
	Error *string `gorm:"column:error;type:text"`
	// StartedAt is when the job was created
	StartedAt time.Time `gorm:"column:started_at;not null"`
	// FinishedAt is when the job reached a terminal status
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

// TableName specifies the table name for the JobRecord model
func (JobRecord) TableName() string {
	return "job_records"
}
