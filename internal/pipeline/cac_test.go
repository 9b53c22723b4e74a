package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

func float64Ptr(v float64) *float64 {
	return &v
}

func TestResolveSpend_DailySumsPerChannel(t *testing.T) {
	channels := []schema.Channel{
		{ChannelID: "paid"},
		{ChannelID: "brand"},
		{ChannelID: "idle"},
	}
	daily := []schema.ChannelSpendDaily{
		{ChannelID: "paid", Date: date(2024, 5, 1), Spend: 60},
		{ChannelID: "paid", Date: date(2024, 5, 2), Spend: 40},
		{ChannelID: "brand", Date: date(2024, 5, 1), Spend: 400},
	}

	got := pipeline.ResolveSpend(channels, daily, domain.SpendSourceDaily, nil, date(2024, 6, 1))

	assert.Equal(t, 100.0, got["paid"])
	assert.Equal(t, 400.0, got["brand"])
	// Channels without spend rows still get an entry.
	spend, ok := got["idle"]
	assert.True(t, ok)
	assert.Equal(t, 0.0, spend)
}

func TestResolveSpend_DailyLookbackWindow(t *testing.T) {
	channels := []schema.Channel{{ChannelID: "paid"}}
	daily := []schema.ChannelSpendDaily{
		{ChannelID: "paid", Date: date(2024, 5, 1), Spend: 100},
		// Exactly at the cutoff still counts.
		{ChannelID: "paid", Date: date(2024, 5, 25), Spend: 30},
		{ChannelID: "paid", Date: date(2024, 5, 30), Spend: 50},
	}
	lookback := 7

	got := pipeline.ResolveSpend(channels, daily, domain.SpendSourceDaily, &lookback, date(2024, 6, 1))

	assert.Equal(t, 80.0, got["paid"])
}

func TestResolveSpend_ChannelTotal(t *testing.T) {
	channels := []schema.Channel{
		{ChannelID: "paid", BudgetSpend: float64Ptr(1200)},
		{ChannelID: "brand"},
	}
	daily := []schema.ChannelSpendDaily{
		// Daily rows are ignored entirely in channel_total mode.
		{ChannelID: "paid", Date: date(2024, 5, 1), Spend: 9999},
	}

	got := pipeline.ResolveSpend(channels, daily, domain.SpendSourceChannelTotal, nil, date(2024, 6, 1))

	assert.Equal(t, 1200.0, got["paid"])
	assert.Equal(t, 0.0, got["brand"])
}

func TestAggregateChannels_PerChannelMetrics(t *testing.T) {
	ltv := map[string]*pipeline.CustomerLTV{
		"c1": {LTV: 300},
		"c2": {LTV: 100},
		"c3": {LTV: 80},
	}
	segments := map[string]domain.Segment{
		"c1": domain.SegmentHigh,
		"c2": domain.SegmentMid,
		"c3": domain.SegmentLow,
	}
	attribution := map[string]string{"c1": "paid", "c2": "paid", "c3": "brand"}
	spend := map[string]float64{"paid": 100, "brand": 400, "idle": 50}

	rows := pipeline.AggregateChannels(ltv, segments, attribution, spend)

	require.Len(t, rows, 2)
	// Sorted by channel ID.
	brand, paid := rows[0], rows[1]

	assert.Equal(t, "brand", brand.ChannelID)
	assert.Equal(t, 1, brand.AcquiredCustomers)
	assert.Equal(t, 0, brand.HighLTVCustomers)
	assert.Equal(t, 0.0, brand.HighLTVShare)
	assert.Equal(t, 400.0, brand.CAC)
	assert.Equal(t, 80.0, brand.AvgLTV)
	assert.Equal(t, -320.0, brand.NetValue)

	assert.Equal(t, "paid", paid.ChannelID)
	assert.Equal(t, 2, paid.AcquiredCustomers)
	assert.Equal(t, 1, paid.HighLTVCustomers)
	assert.Equal(t, 0.5, paid.HighLTVShare)
	assert.Equal(t, 50.0, paid.CAC)
	assert.Equal(t, 200.0, paid.AvgLTV)
	assert.Equal(t, 150.0, paid.NetValue)
}

func TestAggregateChannels_ZeroAttributedChannelsNotEmitted(t *testing.T) {
	ltv := map[string]*pipeline.CustomerLTV{"c1": {LTV: 10}}
	segments := map[string]domain.Segment{"c1": domain.SegmentHigh}
	attribution := map[string]string{"c1": "paid"}
	spend := map[string]float64{"paid": 10, "idle": 500}

	rows := pipeline.AggregateChannels(ltv, segments, attribution, spend)

	require.Len(t, rows, 1)
	assert.Equal(t, "paid", rows[0].ChannelID)
}

func TestAggregateChannels_UnknownChannelZeroSpend(t *testing.T) {
	// A customer attributed to a channel missing from the channels table
	// still yields a row, with zero spend and zero CAC.
	ltv := map[string]*pipeline.CustomerLTV{"c1": {LTV: 75}}
	segments := map[string]domain.Segment{"c1": domain.SegmentMid}
	attribution := map[string]string{"c1": "mystery"}

	rows := pipeline.AggregateChannels(ltv, segments, attribution, map[string]float64{})

	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Spend)
	assert.Equal(t, 0.0, rows[0].CAC)
	assert.Equal(t, 75.0, rows[0].NetValue)
}
