package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/growthplane/ltv-engine/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Recompute trigger (requires authentication)
		v1.POST("/projects/:project_id/recompute", middleware.Auth(authCfg), handler.TriggerRecompute)

		// Job status (public read access)
		v1.GET("/jobs/:job_id", handler.GetJob)

		// Materialized metrics (public read access)
		v1.GET("/projects/:project_id/metrics/customers", handler.ListCustomerMetrics)
		v1.GET("/projects/:project_id/metrics/segments", handler.ListSegmentMetrics)
		v1.GET("/projects/:project_id/metrics/channels", handler.ListChannelMetrics)

		// Plan creation and lifecycle (mutations require authentication)
		v1.POST("/projects/:project_id/plans", middleware.Auth(authCfg), handler.CreatePlan)
		v1.GET("/projects/:project_id/plans", handler.ListPlans)
		v1.GET("/plans/:plan_id", handler.GetPlan)
		v1.POST("/plans/:plan_id/approve", middleware.Auth(authCfg), handler.ApprovePlan)
		v1.POST("/plans/:plan_id/export", middleware.Auth(authCfg), handler.ExportPlan)
	}
}
