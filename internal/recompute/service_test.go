package recompute_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/logger"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/recompute"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// fixedClock returns a constant time from Now
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Since(t time.Time) time.Duration {
	return c.now.Sub(t)
}

// fakeStore is an in-memory store for runner tests. Only the methods the
// runner touches are meaningful; metrics reads and plan methods are stubs.
type fakeStore struct {
	mu sync.Mutex

	snapshot    *pipeline.Snapshot
	snapshotErr error
	replaceErr  error

	jobs         map[string]*schema.JobRecord
	materialized int
	lastResult   *pipeline.Result
	lastVersion  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		snapshot: &pipeline.Snapshot{},
		jobs:     make(map[string]*schema.JobRecord),
	}
}

func (f *fakeStore) LoadSnapshot(ctx context.Context, projectID string) (*pipeline.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeStore) GetActiveModelConfig(ctx context.Context, projectID string) (domain.ModelConfig, error) {
	return domain.DefaultModelConfig(), nil
}

func (f *fakeStore) CreateJob(ctx context.Context, job *schema.JobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.JobID] = &copied
	return nil
}

func (f *fakeStore) UpdateJobPhase(ctx context.Context, jobID string, phase string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[jobID]; ok {
		job.Phase = phase
	}
	return nil
}

func (f *fakeStore) MarkJobFailed(ctx context.Context, jobID string, errMsg string, finishedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[jobID]; ok {
		job.Status = string(domain.JobStatusFailed)
		job.Error = &errMsg
		job.FinishedAt = &finishedAt
	}
	return nil
}

func (f *fakeStore) GetJob(ctx context.Context, jobID string) (*schema.JobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (f *fakeStore) ReplaceDerivedMetrics(ctx context.Context, projectID string, result *pipeline.Result, modelVersion string, jobID string, computedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.materialized++
	f.lastResult = result
	f.lastVersion = modelVersion
	if job, ok := f.jobs[jobID]; ok {
		job.Status = string(domain.JobStatusCompleted)
		job.Phase = "done"
		job.FinishedAt = &computedAt
	}
	return nil
}

func (f *fakeStore) ListCustomerMetrics(ctx context.Context, projectID string) ([]schema.CustomerMetrics, error) {
	return nil, nil
}

func (f *fakeStore) ListSegmentMetrics(ctx context.Context, projectID string) ([]schema.SegmentMetrics, error) {
	return nil, nil
}

func (f *fakeStore) ListChannelMetrics(ctx context.Context, projectID string) ([]schema.ChannelMetrics, error) {
	return nil, nil
}

func (f *fakeStore) CreateActionPlan(ctx context.Context, plan *schema.ActionPlan) error {
	return nil
}

func (f *fakeStore) GetActionPlan(ctx context.Context, planID string) (*schema.ActionPlan, error) {
	return nil, nil
}

func (f *fakeStore) ListActionPlans(ctx context.Context, projectID string) ([]schema.ActionPlan, error) {
	return nil, nil
}

func (f *fakeStore) ApproveActionPlan(ctx context.Context, planID string, approvedAt time.Time) (*schema.ActionPlan, error) {
	return nil, nil
}

func (f *fakeStore) ExportActionPlan(ctx context.Context, planID string, exportedAt time.Time) (*schema.ActionPlan, error) {
	return nil, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.MetricsRecomputedEvent
	err    error
}

func (p *fakePublisher) PublishMetricsRecomputed(ctx context.Context, event *domain.MetricsRecomputedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() {}

func TestEnqueue_CompletesJobAndPublishes(t *testing.T) {
	fs := newFakeStore()
	fs.snapshot = &pipeline.Snapshot{
		Customers: []schema.Customer{
			{CustomerID: "c1", ChannelSourceID: strPtr("paid")},
		},
		Transactions: []schema.Transaction{
			{TransactionID: "t1", CustomerID: "c1", RevenueAmount: 200, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		Channels: []schema.Channel{
			{ChannelID: "paid"},
		},
		DailySpend: []schema.ChannelSpendDaily{
			{ChannelID: "paid", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Spend: 50},
		},
	}
	pub := &fakePublisher{}
	clock := &fixedClock{now: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)}
	svc := recompute.NewService(fs, pub, clock, recompute.Config{})

	jobID, err := svc.Enqueue(context.Background(), "proj-1")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)
	svc.Stop()

	job, err := fs.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, string(domain.JobStatusCompleted), job.Status)
	assert.NotNil(t, job.FinishedAt)

	assert.Equal(t, 1, fs.materialized)
	require.NotNil(t, fs.lastResult)
	assert.Len(t, fs.lastResult.CustomerMetrics, 1)
	assert.NotEmpty(t, fs.lastVersion)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "proj-1", pub.events[0].ProjectID)
	assert.Equal(t, jobID, pub.events[0].JobID)
	assert.Equal(t, 1, pub.events[0].Customers)
}

func TestEnqueue_SnapshotErrorFailsJob(t *testing.T) {
	fs := newFakeStore()
	fs.snapshotErr = errors.New("connection reset")
	pub := &fakePublisher{}
	clock := &fixedClock{now: time.Now()}
	svc := recompute.NewService(fs, pub, clock, recompute.Config{})

	jobID, err := svc.Enqueue(context.Background(), "proj-1")
	require.NoError(t, err)
	svc.Stop()

	job, err := fs.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, string(domain.JobStatusFailed), job.Status)
	require.NotNil(t, job.Error)
	assert.Contains(t, *job.Error, "connection reset")

	// Nothing was materialized and nothing was announced
	assert.Zero(t, fs.materialized)
	assert.Empty(t, pub.events)
}

func TestEnqueue_MaterializationErrorFailsJob(t *testing.T) {
	fs := newFakeStore()
	fs.replaceErr = errors.New("deadlock detected")
	pub := &fakePublisher{}
	clock := &fixedClock{now: time.Now()}
	svc := recompute.NewService(fs, pub, clock, recompute.Config{})

	jobID, err := svc.Enqueue(context.Background(), "proj-1")
	require.NoError(t, err)
	svc.Stop()

	job, err := fs.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.JobStatusFailed), job.Status)
	assert.Empty(t, pub.events)
}

func TestEnqueue_PublishFailureDoesNotFailJob(t *testing.T) {
	fs := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	clock := &fixedClock{now: time.Now()}
	svc := recompute.NewService(fs, pub, clock, recompute.Config{
		PublishTimeout: 50 * time.Millisecond,
	})

	jobID, err := svc.Enqueue(context.Background(), "proj-1")
	require.NoError(t, err)
	svc.Stop()

	job, err := fs.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.JobStatusCompleted), job.Status)
}

func TestEnqueue_NilPublisher(t *testing.T) {
	fs := newFakeStore()
	clock := &fixedClock{now: time.Now()}
	svc := recompute.NewService(fs, nil, clock, recompute.Config{})

	jobID, err := svc.Enqueue(context.Background(), "proj-1")
	require.NoError(t, err)
	svc.Stop()

	job, err := fs.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.JobStatusCompleted), job.Status)
}

func strPtr(s string) *string {
	return &s
}
