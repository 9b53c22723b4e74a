// Package recompute runs metrics recomputation as discrete background jobs.
// Jobs for different projects run concurrently on a worker pool; jobs for the
// same project are serialized so two materializations never interleave.
package recompute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/growthplane/ltv-engine/internal/adapter"
	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/logger"
	"github.com/growthplane/ltv-engine/internal/messaging"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// Config holds the runner settings
type Config struct {
	// MaxWorkers bounds concurrently running recompute jobs
	MaxWorkers int
	// QueueSize bounds jobs waiting for a worker
	QueueSize int
	// PublishTimeout bounds the post-materialization event publish retries
	PublishTimeout time.Duration
}

const (
	defaultMaxWorkers     = 4
	defaultQueueSize      = 64
	defaultPublishTimeout = 30 * time.Second
)

// Service schedules and executes recompute jobs
type Service struct {
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	cfg       Config
	pool      pond.Pool

	mu           sync.Mutex
	projectLocks map[string]*sync.Mutex
}

// NewService creates a recompute service. publisher may be nil when no broker
// is configured; materialization then happens without the announcement.
func NewService(s store.Store, publisher messaging.Publisher, clock adapter.Clock, cfg Config) *Service {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}

	return &Service{
		store:        s,
		publisher:    publisher,
		clock:        clock,
		cfg:          cfg,
		pool:         pond.NewPool(cfg.MaxWorkers, pond.WithQueueSize(cfg.QueueSize)),
		projectLocks: make(map[string]*sync.Mutex),
	}
}

// Enqueue creates a RUNNING job record and schedules the recompute. It returns
// the job ID immediately; progress is observable through the job record.
func (s *Service) Enqueue(ctx context.Context, projectID string) (string, error) {
	jobID := uuid.NewString()
	job := &schema.JobRecord{
		JobID:     jobID,
		ProjectID: projectID,
		Status:    string(domain.JobStatusRunning),
		Phase:     "queued",
		StartedAt: s.clock.Now(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to enqueue recompute: %w", err)
	}

	s.pool.Submit(func() {
		s.run(context.Background(), jobID, projectID)
	})

	return jobID, nil
}

// Stop waits for queued and running jobs to finish
func (s *Service) Stop() {
	s.pool.StopAndWait()
}

func (s *Service) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.projectLocks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.projectLocks[projectID] = lock
	}
	return lock
}

func (s *Service) run(ctx context.Context, jobID, projectID string) {
	// Serialize jobs per project; a second request waits for the first
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.execute(ctx, jobID, projectID); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("jobID", jobID),
			zap.String("projectID", projectID))
		if markErr := s.store.MarkJobFailed(ctx, jobID, err.Error(), s.clock.Now()); markErr != nil {
			logger.ErrorCtx(ctx, markErr, zap.String("jobID", jobID))
		}
	}
}

func (s *Service) execute(ctx context.Context, jobID, projectID string) error {
	if err := s.store.UpdateJobPhase(ctx, jobID, "loading snapshot"); err != nil {
		return err
	}
	snapshot, err := s.store.LoadSnapshot(ctx, projectID)
	if err != nil {
		return err
	}
	cfg, err := s.store.GetActiveModelConfig(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateJobPhase(ctx, jobID, "computing metrics"); err != nil {
		return err
	}
	now := s.clock.Now()
	result := pipeline.Compute(snapshot, cfg, now)
	modelVersion := ulid.MustNewDefault(now).String()

	if err := s.store.UpdateJobPhase(ctx, jobID, "materializing"); err != nil {
		return err
	}
	if err := s.store.ReplaceDerivedMetrics(ctx, projectID, result, modelVersion, jobID, now); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Recompute completed",
		zap.String("jobID", jobID),
		zap.String("projectID", projectID),
		zap.String("modelVersion", modelVersion),
		zap.Int("customers", len(result.CustomerMetrics)),
		zap.Int("channels", len(result.ChannelMetrics)))

	// The materialization is committed; a publish failure is logged, not fatal
	s.publishRecomputed(ctx, &domain.MetricsRecomputedEvent{
		ProjectID:    projectID,
		JobID:        jobID,
		ModelVersion: modelVersion,
		Customers:    len(result.CustomerMetrics),
		Channels:     len(result.ChannelMetrics),
		Timestamp:    now,
	})

	return nil
}

func (s *Service) publishRecomputed(ctx context.Context, event *domain.MetricsRecomputedEvent) {
	if s.publisher == nil {
		return
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = s.cfg.PublishTimeout

	operation := func() error {
		return s.publisher.PublishMetricsRecomputed(ctx, event)
	}
	notify := func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Failed to publish recompute event, retrying",
			zap.Error(err),
			zap.Duration("next_retry_in", next))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to publish recompute event: %w", err),
			zap.String("jobID", event.JobID),
			zap.String("projectID", event.ProjectID))
	}
}
