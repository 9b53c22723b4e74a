package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/growthplane/ltv-engine/internal/adapter"
	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/recommender"
	"github.com/growthplane/ltv-engine/internal/recompute"
	"github.com/growthplane/ltv-engine/internal/store"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// TriggerRecompute enqueues a metrics recompute for a project
	// POST /api/v1/projects/:project_id/recompute
	TriggerRecompute(c *gin.Context)

	// GetJob retrieves the status of a recompute job
	// GET /api/v1/jobs/:job_id
	GetJob(c *gin.Context)

	// ListCustomerMetrics returns the materialized per-customer metrics
	// GET /api/v1/projects/:project_id/metrics/customers
	ListCustomerMetrics(c *gin.Context)

	// ListSegmentMetrics returns the materialized per-segment metrics
	// GET /api/v1/projects/:project_id/metrics/segments
	ListSegmentMetrics(c *gin.Context)

	// ListChannelMetrics returns the materialized per-channel metrics
	// GET /api/v1/projects/:project_id/metrics/channels
	ListChannelMetrics(c *gin.Context)

	// CreatePlan runs the recommender over a project's channel metrics and persists the plan
	// POST /api/v1/projects/:project_id/plans
	CreatePlan(c *gin.Context)

	// ListPlans returns a project's plans, newest first
	// GET /api/v1/projects/:project_id/plans
	ListPlans(c *gin.Context)

	// GetPlan retrieves a plan by ID
	// GET /api/v1/plans/:plan_id
	GetPlan(c *gin.Context)

	// ApprovePlan marks a plan approved, once
	// POST /api/v1/plans/:plan_id/approve
	ApprovePlan(c *gin.Context)

	// ExportPlan marks a plan exported, once
	// POST /api/v1/plans/:plan_id/export
	ExportPlan(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store     store.Store
	recompute *recompute.Service
	clock     adapter.Clock
}

// NewHandler creates a new REST API handler
func NewHandler(s store.Store, svc *recompute.Service, clock adapter.Clock) Handler {
	return &handler{
		store:     s,
		recompute: svc,
		clock:     clock,
	}
}

// TriggerRecompute enqueues a metrics recompute for a project
func (h *handler) TriggerRecompute(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	jobID, err := h.recompute.Enqueue(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to enqueue recompute",
			zap.String("projectID", projectID))
		return
	}

	c.JSON(http.StatusAccepted, recomputeAcceptedResponse{JobID: jobID})
}

// GetJob retrieves the status of a recompute job
func (h *handler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		respondBadRequest(c, "Job ID is required")
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondInternalError(c, err, "Failed to get job", zap.String("jobID", jobID))
		return
	}
	if job == nil {
		respondNotFound(c, "Job not found")
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

// ListCustomerMetrics returns the materialized per-customer metrics
func (h *handler) ListCustomerMetrics(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	rows, err := h.store.ListCustomerMetrics(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to list customer metrics",
			zap.String("projectID", projectID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": toCustomerMetricsResponses(rows)})
}

// ListSegmentMetrics returns the materialized per-segment metrics
func (h *handler) ListSegmentMetrics(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	rows, err := h.store.ListSegmentMetrics(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to list segment metrics",
			zap.String("projectID", projectID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"segments": toSegmentMetricsResponses(rows)})
}

// ListChannelMetrics returns the materialized per-channel metrics
func (h *handler) ListChannelMetrics(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	rows, err := h.store.ListChannelMetrics(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to list channel metrics",
			zap.String("projectID", projectID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": toChannelMetricsResponses(rows)})
}

// CreatePlan runs the recommender over a project's channel metrics and persists the plan
func (h *handler) CreatePlan(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	strategy := domain.Strategy(req.Strategy)
	if !domain.IsValidStrategy(strategy) {
		respondBadRequest(c, "Unknown strategy", req.Strategy)
		return
	}

	metrics, err := h.store.ListChannelMetrics(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to list channel metrics",
			zap.String("projectID", projectID))
		return
	}
	if len(metrics) == 0 {
		respondNotFound(c, "No channel metrics materialized for project", projectID)
		return
	}

	items, err := recommender.BuildPlan(metrics, strategy)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownStrategy) {
			respondBadRequest(c, "Unknown strategy", req.Strategy)
			return
		}
		respondInternalError(c, err, "Failed to build plan",
			zap.String("projectID", projectID))
		return
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		respondInternalError(c, err, "Failed to encode plan items")
		return
	}

	plan := &schema.ActionPlan{
		PlanID:    uuid.NewString(),
		ProjectID: projectID,
		Objective: string(strategy),
		Items:     itemsJSON,
		CreatedAt: h.clock.Now(),
	}
	if err := h.store.CreateActionPlan(c.Request.Context(), plan); err != nil {
		respondInternalError(c, err, "Failed to persist plan",
			zap.String("projectID", projectID))
		return
	}

	resp, err := toPlanResponse(plan)
	if err != nil {
		respondInternalError(c, err, "Failed to render plan")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListPlans returns a project's plans, newest first
func (h *handler) ListPlans(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		respondBadRequest(c, "Project ID is required")
		return
	}

	plans, err := h.store.ListActionPlans(c.Request.Context(), projectID)
	if err != nil {
		respondInternalError(c, err, "Failed to list plans",
			zap.String("projectID", projectID))
		return
	}

	out := make([]planResponse, 0, len(plans))
	for i := range plans {
		resp, err := toPlanResponse(&plans[i])
		if err != nil {
			respondInternalError(c, err, "Failed to render plan")
			return
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// GetPlan retrieves a plan by ID
func (h *handler) GetPlan(c *gin.Context) {
	planID := c.Param("plan_id")
	if planID == "" {
		respondBadRequest(c, "Plan ID is required")
		return
	}

	plan, err := h.store.GetActionPlan(c.Request.Context(), planID)
	if err != nil {
		respondInternalError(c, err, "Failed to get plan", zap.String("planID", planID))
		return
	}
	if plan == nil {
		respondNotFound(c, "Plan not found")
		return
	}

	resp, err := toPlanResponse(plan)
	if err != nil {
		respondInternalError(c, err, "Failed to render plan")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApprovePlan marks a plan approved, once
func (h *handler) ApprovePlan(c *gin.Context) {
	planID := c.Param("plan_id")
	if planID == "" {
		respondBadRequest(c, "Plan ID is required")
		return
	}

	plan, err := h.store.ApproveActionPlan(c.Request.Context(), planID, h.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			respondNotFound(c, "Plan not found")
		case errors.Is(err, domain.ErrPlanAlreadyApproved):
			respondConflict(c, "Plan already approved")
		default:
			respondInternalError(c, err, "Failed to approve plan", zap.String("planID", planID))
		}
		return
	}

	resp, err := toPlanResponse(plan)
	if err != nil {
		respondInternalError(c, err, "Failed to render plan")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportPlan marks a plan exported, once
func (h *handler) ExportPlan(c *gin.Context) {
	planID := c.Param("plan_id")
	if planID == "" {
		respondBadRequest(c, "Plan ID is required")
		return
	}

	plan, err := h.store.ExportActionPlan(c.Request.Context(), planID, h.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			respondNotFound(c, "Plan not found")
		case errors.Is(err, domain.ErrPlanAlreadyExported):
			respondConflict(c, "Plan already exported")
		default:
			respondInternalError(c, err, "Failed to export plan", zap.String("planID", planID))
		}
		return
	}

	resp, err := toPlanResponse(plan)
	if err != nil {
		respondInternalError(c, err, "Failed to render plan")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
