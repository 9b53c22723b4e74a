package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays
// under PostgreSQL's 65535-parameter limit for the extended protocol, with
// headroom for ON CONFLICT clauses and GORM bookkeeping.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// LoadSnapshot reads every raw entity table for a project into memory
func (s *pgStore) LoadSnapshot(ctx context.Context, projectID string) (*pipeline.Snapshot, error) {
	snapshot := &pipeline.Snapshot{}

	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.Customers).Error; err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.Transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.Channels).Error; err != nil {
		return nil, fmt.Errorf("failed to load channels: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.Events).Error; err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.AcquiredVia).Error; err != nil {
		return nil, fmt.Errorf("failed to load acquired-via edges: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&snapshot.DailySpend).Error; err != nil {
		return nil, fmt.Errorf("failed to load daily spend: %w", err)
	}

	return snapshot, nil
}

// GetActiveModelConfig returns the project's active config, or the defaults when none is stored
func (s *pgStore) GetActiveModelConfig(ctx context.Context, projectID string) (domain.ModelConfig, error) {
	var row schema.ModelConfig
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND active = ?", projectID, true).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DefaultModelConfig(), nil
		}
		return domain.ModelConfig{}, fmt.Errorf("failed to get active model config: %w", err)
	}

	cfg := domain.ModelConfig{
		LTVWindowDays:       row.LTVWindowDays,
		SegmentHighQuantile: row.SegmentHighQuantile,
		SegmentMidQuantile:  row.SegmentMidQuantile,
		AttributionMode:     domain.AttributionMode(row.AttributionMode),
		CACSpendSource:      domain.SpendSource(row.CACSpendSource),
		CACLookbackDays:     row.CACLookbackDays,
	}
	if len(row.ChurnEventTypes) > 0 {
		if err := json.Unmarshal(row.ChurnEventTypes, &cfg.ChurnEventTypes); err != nil {
			return domain.ModelConfig{}, fmt.Errorf("failed to parse churn event types: %w", err)
		}
	}

	return cfg.Normalize(), nil
}

// CreateJob inserts a new job record
func (s *pgStore) CreateJob(ctx context.Context, job *schema.JobRecord) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJobPhase updates the advisory phase string of a running job
func (s *pgStore) UpdateJobPhase(ctx context.Context, jobID string, phase string) error {
	err := s.db.WithContext(ctx).
		Model(&schema.JobRecord{}).
		Where("job_id = ?", jobID).
		Update("phase", phase).Error
	if err != nil {
		return fmt.Errorf("failed to update job phase: %w", err)
	}
	return nil
}

// MarkJobFailed transitions a job to FAILED with an error message
func (s *pgStore) MarkJobFailed(ctx context.Context, jobID string, errMsg string, finishedAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&schema.JobRecord{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      string(domain.JobStatusFailed),
			"error":       errMsg,
			"finished_at": finishedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// GetJob retrieves a job record by ID
func (s *pgStore) GetJob(ctx context.Context, jobID string) (*schema.JobRecord, error) {
	var job schema.JobRecord
	err := s.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ReplaceDerivedMetrics atomically rewrites the three derived tables for a
// project, appends a RECOMPUTE audit entry and marks the job COMPLETED
func (s *pgStore) ReplaceDerivedMetrics(ctx context.Context, projectID string, result *pipeline.Result, modelVersion string, jobID string, computedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Clear the previous materialization
		if err := tx.Where("project_id = ?", projectID).Delete(&schema.CustomerMetrics{}).Error; err != nil {
			return fmt.Errorf("failed to clear customer metrics: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&schema.SegmentMetrics{}).Error; err != nil {
			return fmt.Errorf("failed to clear segment metrics: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&schema.ChannelMetrics{}).Error; err != nil {
			return fmt.Errorf("failed to clear channel metrics: %w", err)
		}

		// 2. Bulk-insert the fresh rows, stamped with project, version and time
		customerRows := make([]schema.CustomerMetrics, len(result.CustomerMetrics))
		for i, row := range result.CustomerMetrics {
			row.ProjectID = projectID
			row.ComputedAt = computedAt
			row.ModelVersion = modelVersion
			customerRows[i] = row
		}
		if len(customerRows) > 0 {
			batchSize := calculateSafeBatchSize(len(customerRows), 10)
			if err := tx.CreateInBatches(customerRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert customer metrics: %w", err)
			}
		}

		segmentRows := make([]schema.SegmentMetrics, len(result.SegmentMetrics))
		for i, row := range result.SegmentMetrics {
			row.ProjectID = projectID
			row.ComputedAt = computedAt
			row.ModelVersion = modelVersion
			segmentRows[i] = row
		}
		if len(segmentRows) > 0 {
			if err := tx.Create(segmentRows).Error; err != nil {
				return fmt.Errorf("failed to insert segment metrics: %w", err)
			}
		}

		channelRows := make([]schema.ChannelMetrics, len(result.ChannelMetrics))
		for i, row := range result.ChannelMetrics {
			row.ProjectID = projectID
			row.ComputedAt = computedAt
			row.ModelVersion = modelVersion
			channelRows[i] = row
		}
		if len(channelRows) > 0 {
			batchSize := calculateSafeBatchSize(len(channelRows), 11)
			if err := tx.CreateInBatches(channelRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert channel metrics: %w", err)
			}
		}

		// 3. Audit entry with the resulting counts
		payload, err := json.Marshal(map[string]int{
			"customers": len(result.CustomerMetrics),
			"channels":  len(result.ChannelMetrics),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal audit payload: %w", err)
		}
		audit := schema.AuditLog{
			ProjectID: projectID,
			Type:      domain.AuditTypeRecompute,
			Payload:   payload,
			TS:        computedAt,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		// 4. Job done
		err = tx.Model(&schema.JobRecord{}).
			Where("job_id = ?", jobID).
			Updates(map[string]interface{}{
				"status":      string(domain.JobStatusCompleted),
				"phase":       "done",
				"finished_at": computedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to complete job: %w", err)
		}

		return nil
	})
}

// ListCustomerMetrics returns the materialized per-customer rows for a project
func (s *pgStore) ListCustomerMetrics(ctx context.Context, projectID string) ([]schema.CustomerMetrics, error) {
	var rows []schema.CustomerMetrics
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("customer_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer metrics: %w", err)
	}
	return rows, nil
}

// ListSegmentMetrics returns the materialized per-segment rows for a project
func (s *pgStore) ListSegmentMetrics(ctx context.Context, projectID string) ([]schema.SegmentMetrics, error) {
	var rows []schema.SegmentMetrics
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list segment metrics: %w", err)
	}
	return rows, nil
}

// ListChannelMetrics returns the materialized per-channel rows for a project
func (s *pgStore) ListChannelMetrics(ctx context.Context, projectID string) ([]schema.ChannelMetrics, error) {
	var rows []schema.ChannelMetrics
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("channel_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list channel metrics: %w", err)
	}
	return rows, nil
}

// CreateActionPlan persists a freshly built plan
func (s *pgStore) CreateActionPlan(ctx context.Context, plan *schema.ActionPlan) error {
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create action plan: %w", err)
	}
	return nil
}

// GetActionPlan retrieves a plan by ID
func (s *pgStore) GetActionPlan(ctx context.Context, planID string) (*schema.ActionPlan, error) {
	var plan schema.ActionPlan
	err := s.db.WithContext(ctx).Where("plan_id = ?", planID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get action plan: %w", err)
	}
	return &plan, nil
}

// ListActionPlans returns a project's plans, newest first
func (s *pgStore) ListActionPlans(ctx context.Context, projectID string) ([]schema.ActionPlan, error) {
	var plans []schema.ActionPlan
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list action plans: %w", err)
	}
	return plans, nil
}

// ApproveActionPlan sets approvedAt once; a second approval is rejected
func (s *pgStore) ApproveActionPlan(ctx context.Context, planID string, approvedAt time.Time) (*schema.ActionPlan, error) {
	var plan schema.ActionPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("plan_id = ?", planID).
			First(&plan).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPlanNotFound
			}
			return fmt.Errorf("failed to get action plan: %w", err)
		}
		if plan.ApprovedAt != nil {
			return domain.ErrPlanAlreadyApproved
		}

		plan.ApprovedAt = &approvedAt
		if err := tx.Model(&plan).Update("approved_at", approvedAt).Error; err != nil {
			return fmt.Errorf("failed to approve action plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ExportActionPlan sets exportedAt once; a second export is rejected
func (s *pgStore) ExportActionPlan(ctx context.Context, planID string, exportedAt time.Time) (*schema.ActionPlan, error) {
	var plan schema.ActionPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("plan_id = ?", planID).
			First(&plan).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPlanNotFound
			}
			return fmt.Errorf("failed to get action plan: %w", err)
		}
		if plan.ExportedAt != nil {
			return domain.ErrPlanAlreadyExported
		}

		plan.ExportedAt = &exportedAt
		if err := tx.Model(&plan).Update("exported_at", exportedAt).Error; err != nil {
			return fmt.Errorf("failed to export action plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
