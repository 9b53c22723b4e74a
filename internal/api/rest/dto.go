package rest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// recomputeAcceptedResponse is returned when a recompute job is enqueued
type recomputeAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// jobResponse describes a recompute job's status
type jobResponse struct {
	JobID      string     `json:"job_id"`
	ProjectID  string     `json:"project_id"`
	Status     string     `json:"status"`
	Phase      string     `json:"phase"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func toJobResponse(job *schema.JobRecord) jobResponse {
	return jobResponse{
		JobID:      job.JobID,
		ProjectID:  job.ProjectID,
		Status:     job.Status,
		Phase:      job.Phase,
		Error:      job.Error,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
}

// customerMetricsResponse is one materialized per-customer row
type customerMetricsResponse struct {
	CustomerID        string     `json:"customer_id"`
	LTV               float64    `json:"ltv"`
	LTVSegment        string     `json:"ltv_segment"`
	TxnCount          int        `json:"txn_count"`
	FirstPurchaseDate *time.Time `json:"first_purchase_date,omitempty"`
	LastPurchaseDate  *time.Time `json:"last_purchase_date,omitempty"`
	ComputedAt        time.Time  `json:"computed_at"`
	ModelVersion      string     `json:"model_version"`
}

func toCustomerMetricsResponses(rows []schema.CustomerMetrics) []customerMetricsResponse {
	out := make([]customerMetricsResponse, len(rows))
	for i, row := range rows {
		out[i] = customerMetricsResponse{
			CustomerID:        row.CustomerID,
			LTV:               row.LTV,
			LTVSegment:        row.LTVSegment,
			TxnCount:          row.TxnCount,
			FirstPurchaseDate: row.FirstPurchaseDate,
			LastPurchaseDate:  row.LastPurchaseDate,
			ComputedAt:        row.ComputedAt,
			ModelVersion:      row.ModelVersion,
		}
	}
	return out
}

// segmentMetricsResponse is one materialized per-segment row
type segmentMetricsResponse struct {
	Segment       string    `json:"segment"`
	CustomerCount int       `json:"customer_count"`
	AvgLTV        float64   `json:"avg_ltv"`
	TotalRevenue  float64   `json:"total_revenue"`
	ComputedAt    time.Time `json:"computed_at"`
	ModelVersion  string    `json:"model_version"`
}

func toSegmentMetricsResponses(rows []schema.SegmentMetrics) []segmentMetricsResponse {
	out := make([]segmentMetricsResponse, len(rows))
	for i, row := range rows {
		out[i] = segmentMetricsResponse{
			Segment:       row.Segment,
			CustomerCount: row.CustomerCount,
			AvgLTV:        row.AvgLTV,
			TotalRevenue:  row.TotalRevenue,
			ComputedAt:    row.ComputedAt,
			ModelVersion:  row.ModelVersion,
		}
	}
	return out
}

// channelMetricsResponse is one materialized per-channel row
type channelMetricsResponse struct {
	ChannelID         string    `json:"channel_id"`
	CAC               float64   `json:"cac"`
	Spend             float64   `json:"spend"`
	AcquiredCustomers int       `json:"acquired_customers"`
	HighLTVCustomers  int       `json:"high_ltv_customers"`
	HighLTVShare      float64   `json:"high_ltv_share"`
	AvgLTV            float64   `json:"avg_ltv"`
	NetValue          float64   `json:"net_value"`
	ComputedAt        time.Time `json:"computed_at"`
	ModelVersion      string    `json:"model_version"`
}

func toChannelMetricsResponses(rows []schema.ChannelMetrics) []channelMetricsResponse {
	out := make([]channelMetricsResponse, len(rows))
	for i, row := range rows {
		out[i] = channelMetricsResponse{
			ChannelID:         row.ChannelID,
			CAC:               row.CAC,
			Spend:             row.Spend,
			AcquiredCustomers: row.AcquiredCustomers,
			HighLTVCustomers:  row.HighLTVCustomers,
			HighLTVShare:      row.HighLTVShare,
			AvgLTV:            row.AvgLTV,
			NetValue:          row.NetValue,
			ComputedAt:        row.ComputedAt,
			ModelVersion:      row.ModelVersion,
		}
	}
	return out
}

// createPlanRequest is the body of a plan creation request
type createPlanRequest struct {
	Strategy string `json:"strategy" binding:"required"`
}

// planResponse describes an action plan with its line items
type planResponse struct {
	PlanID     string            `json:"plan_id"`
	ProjectID  string            `json:"project_id"`
	Objective  string            `json:"objective"`
	Items      []domain.PlanItem `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
	ApprovedAt *time.Time        `json:"approved_at,omitempty"`
	ExportedAt *time.Time        `json:"exported_at,omitempty"`
}

func toPlanResponse(plan *schema.ActionPlan) (planResponse, error) {
	var items []domain.PlanItem
	if len(plan.Items) > 0 {
		if err := json.Unmarshal(plan.Items, &items); err != nil {
			return planResponse{}, fmt.Errorf("failed to parse plan items: %w", err)
		}
	}

	return planResponse{
		PlanID:     plan.PlanID,
		ProjectID:  plan.ProjectID,
		Objective:  plan.Objective,
		Items:      items,
		CreatedAt:  plan.CreatedAt,
		ApprovedAt: plan.ApprovedAt,
		ExportedAt: plan.ExportedAt,
	}, nil
}
