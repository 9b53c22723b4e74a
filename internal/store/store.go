package store

import (
	"context"
	"time"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// Store defines the interface for database operations
type Store interface {
	// LoadSnapshot reads every raw entity table for a project into memory
	LoadSnapshot(ctx context.Context, projectID string) (*pipeline.Snapshot, error)
	// GetActiveModelConfig returns the project's active config, or the defaults when none is stored
	GetActiveModelConfig(ctx context.Context, projectID string) (domain.ModelConfig, error)

	// CreateJob inserts a new job record
	CreateJob(ctx context.Context, job *schema.JobRecord) error
	// UpdateJobPhase updates the advisory phase string of a running job
	UpdateJobPhase(ctx context.Context, jobID string, phase string) error
	// MarkJobFailed transitions a job to FAILED with an error message
	MarkJobFailed(ctx context.Context, jobID string, errMsg string, finishedAt time.Time) error
	// GetJob retrieves a job record by ID
	GetJob(ctx context.Context, jobID string) (*schema.JobRecord, error)

	// ReplaceDerivedMetrics atomically rewrites the three derived tables for a
	// project, appends a RECOMPUTE audit entry and marks the job COMPLETED
	ReplaceDerivedMetrics(ctx context.Context, projectID string, result *pipeline.Result, modelVersion string, jobID string, computedAt time.Time) error

	// ListCustomerMetrics returns the materialized per-customer rows for a project
	ListCustomerMetrics(ctx context.Context, projectID string) ([]schema.CustomerMetrics, error)
	// ListSegmentMetrics returns the materialized per-segment rows for a project
	ListSegmentMetrics(ctx context.Context, projectID string) ([]schema.SegmentMetrics, error)
	// ListChannelMetrics returns the materialized per-channel rows for a project
	ListChannelMetrics(ctx context.Context, projectID string) ([]schema.ChannelMetrics, error)

	// CreateActionPlan persists a freshly built plan
	CreateActionPlan(ctx context.Context, plan *schema.ActionPlan) error
	// GetActionPlan retrieves a plan by ID
	GetActionPlan(ctx context.Context, planID string) (*schema.ActionPlan, error)
	// ListActionPlans returns a project's plans, newest first
	ListActionPlans(ctx context.Context, projectID string) ([]schema.ActionPlan, error)
	// ApproveActionPlan sets approvedAt once; a second approval is rejected
	ApproveActionPlan(ctx context.Context, planID string, approvedAt time.Time) (*schema.ActionPlan, error)
	// ExportActionPlan sets exportedAt once; a second export is rejected
	ExportActionPlan(ctx context.Context, planID string, exportedAt time.Time) (*schema.ActionPlan, error)
}
