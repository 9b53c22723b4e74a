package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestResolveChurn_EarliestEventWins(t *testing.T) {
	events := []schema.Event{
		{EventID: "e1", CustomerID: "c1", Type: "churned", Date: date(2024, 6, 1)},
		{EventID: "e2", CustomerID: "c1", Type: "churned", Date: date(2024, 3, 15)},
		{EventID: "e3", CustomerID: "c1", Type: "churned", Date: date(2024, 9, 30)},
	}

	churned := pipeline.ResolveChurn(events, []string{"churned"})

	assert.Len(t, churned, 1)
	assert.Equal(t, date(2024, 3, 15), churned["c1"])
}

func TestResolveChurn_IgnoresUnconfiguredTypes(t *testing.T) {
	events := []schema.Event{
		{EventID: "e1", CustomerID: "c1", Type: "page_view", Date: date(2024, 1, 1)},
		{EventID: "e2", CustomerID: "c1", Type: "support_ticket", Date: date(2024, 2, 1)},
		{EventID: "e3", CustomerID: "c2", Type: "cancelled", Date: date(2024, 2, 20)},
	}

	churned := pipeline.ResolveChurn(events, []string{"cancelled"})

	// c1 has no qualifying event at all; absence means never churned.
	assert.Len(t, churned, 1)
	_, ok := churned["c1"]
	assert.False(t, ok)
	assert.Equal(t, date(2024, 2, 20), churned["c2"])
}

func TestResolveChurn_EmptyInputs(t *testing.T) {
	assert.Empty(t, pipeline.ResolveChurn(nil, []string{"churned"}))
	assert.Empty(t, pipeline.ResolveChurn([]schema.Event{
		{EventID: "e1", CustomerID: "c1", Type: "churned", Date: date(2024, 1, 1)},
	}, nil))
}
