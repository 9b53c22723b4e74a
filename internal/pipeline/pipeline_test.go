package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

func TestCompute_TwoChannelScenario(t *testing.T) {
	// c1 acquired via paid with LTV 300, c2 via brand with LTV 80.
	// Daily spend paid=100, brand=400.
	snapshot := &pipeline.Snapshot{
		Customers: []schema.Customer{
			{CustomerID: "c1", ChannelSourceID: strPtr("paid")},
			{CustomerID: "c2", ChannelSourceID: strPtr("brand")},
		},
		Transactions: []schema.Transaction{
			{TransactionID: "t1", CustomerID: "c1", RevenueAmount: 300, Date: date(2024, 3, 1)},
			{TransactionID: "t2", CustomerID: "c2", RevenueAmount: 80, Date: date(2024, 3, 2)},
		},
		Channels: []schema.Channel{
			{ChannelID: "paid"},
			{ChannelID: "brand"},
		},
		DailySpend: []schema.ChannelSpendDaily{
			{ChannelID: "paid", Date: date(2024, 3, 1), Spend: 100},
			{ChannelID: "brand", Date: date(2024, 3, 1), Spend: 400},
		},
	}
	cfg := domain.DefaultModelConfig()

	result := pipeline.Compute(snapshot, cfg, date(2024, 4, 1))

	require.Len(t, result.ChannelMetrics, 2)
	brand, paid := result.ChannelMetrics[0], result.ChannelMetrics[1]

	assert.Equal(t, "paid", paid.ChannelID)
	assert.Equal(t, 100.0, paid.CAC)
	assert.Equal(t, 300.0, paid.AvgLTV)
	assert.InDelta(t, 3.0, paid.AvgLTV/paid.CAC, 1e-9)

	assert.Equal(t, "brand", brand.ChannelID)
	assert.Equal(t, 400.0, brand.CAC)
	assert.Equal(t, 80.0, brand.AvgLTV)
}

func TestCompute_AcquiredViaScenario(t *testing.T) {
	// Two customers both linked to channel partner with spend 90.
	snapshot := &pipeline.Snapshot{
		Customers: []schema.Customer{
			{CustomerID: "c1"},
			{CustomerID: "c2"},
		},
		Transactions: []schema.Transaction{
			{TransactionID: "t1", CustomerID: "c1", RevenueAmount: 120, Date: date(2024, 3, 1)},
			{TransactionID: "t2", CustomerID: "c2", RevenueAmount: 60, Date: date(2024, 3, 2)},
		},
		Channels: []schema.Channel{
			{ChannelID: "partner", BudgetSpend: float64Ptr(90)},
		},
		AcquiredVia: []schema.AcquiredVia{
			{CustomerID: "c1", ChannelID: "partner"},
			{CustomerID: "c2", ChannelID: "partner"},
		},
	}
	cfg := domain.DefaultModelConfig()
	cfg.AttributionMode = domain.AttributionAcquiredVia
	cfg.CACSpendSource = domain.SpendSourceChannelTotal

	result := pipeline.Compute(snapshot, cfg, date(2024, 4, 1))

	require.Len(t, result.ChannelMetrics, 1)
	partner := result.ChannelMetrics[0]
	assert.Equal(t, "partner", partner.ChannelID)
	assert.Equal(t, 2, partner.AcquiredCustomers)
	assert.Equal(t, 45.0, partner.CAC)
}

func TestCompute_SegmentCountsConserved(t *testing.T) {
	snapshot := &pipeline.Snapshot{
		Customers: []schema.Customer{
			{CustomerID: "c1"}, {CustomerID: "c2"}, {CustomerID: "c3"},
			{CustomerID: "c4"}, {CustomerID: "c5"}, {CustomerID: "c6"},
		},
		Transactions: []schema.Transaction{
			{TransactionID: "t1", CustomerID: "c1", RevenueAmount: 600, Date: date(2024, 1, 1)},
			{TransactionID: "t2", CustomerID: "c2", RevenueAmount: 300, Date: date(2024, 1, 2)},
			{TransactionID: "t3", CustomerID: "c3", RevenueAmount: 150, Date: date(2024, 1, 3)},
			{TransactionID: "t4", CustomerID: "c4", RevenueAmount: 90, Date: date(2024, 1, 4)},
			{TransactionID: "t5", CustomerID: "c5", RevenueAmount: 20, Date: date(2024, 1, 5)},
		},
	}

	result := pipeline.Compute(snapshot, domain.DefaultModelConfig(), date(2024, 4, 1))

	assert.Len(t, result.CustomerMetrics, 6)

	total := 0
	seen := make(map[string]bool)
	for _, seg := range result.SegmentMetrics {
		total += seg.CustomerCount
		assert.False(t, seen[seg.Segment], "segment emitted twice")
		seen[seg.Segment] = true
	}
	assert.Equal(t, 6, total)

	// Every customer row carries a segment.
	for _, cm := range result.CustomerMetrics {
		assert.Contains(t, []string{"HIGH", "MID", "LOW"}, cm.LTVSegment)
	}
}

func TestCompute_EmptySnapshot(t *testing.T) {
	result := pipeline.Compute(&pipeline.Snapshot{}, domain.DefaultModelConfig(), date(2024, 4, 1))

	assert.Empty(t, result.CustomerMetrics)
	assert.Empty(t, result.SegmentMetrics)
	assert.Empty(t, result.ChannelMetrics)
}

func TestCompute_Idempotent(t *testing.T) {
	snapshot := &pipeline.Snapshot{
		Customers: []schema.Customer{
			{CustomerID: "c1", ChannelSourceID: strPtr("paid"), AcquisitionDate: datePtr(2024, 1, 1)},
			{CustomerID: "c2", ChannelSourceID: strPtr("brand")},
			{CustomerID: "c3", ChannelSourceID: strPtr("paid")},
		},
		Transactions: []schema.Transaction{
			{TransactionID: "t1", CustomerID: "c1", RevenueAmount: 250, Date: date(2024, 2, 1)},
			{TransactionID: "t2", CustomerID: "c2", RevenueAmount: 90, Date: date(2024, 2, 2)},
			{TransactionID: "t3", CustomerID: "c3", RevenueAmount: 10, Date: date(2024, 2, 3)},
		},
		Channels: []schema.Channel{
			{ChannelID: "paid"}, {ChannelID: "brand"},
		},
		Events: []schema.Event{
			{EventID: "e1", CustomerID: "c3", Type: "churned", Date: date(2024, 2, 10)},
		},
		DailySpend: []schema.ChannelSpendDaily{
			{ChannelID: "paid", Date: date(2024, 2, 1), Spend: 75},
			{ChannelID: "brand", Date: date(2024, 2, 1), Spend: 120},
		},
	}
	cfg := domain.DefaultModelConfig()
	now := date(2024, 4, 1)

	first := pipeline.Compute(snapshot, cfg, now)
	second := pipeline.Compute(snapshot, cfg, now)

	assert.Equal(t, first, second)
}
