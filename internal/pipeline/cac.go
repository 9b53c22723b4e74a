package pipeline

import (
	"sort"
	"time"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// ResolveSpend computes per-channel spend under exactly one source mode.
// In daily mode spend rows are summed, restricted to the trailing lookback
// window when one is configured. In channel_total mode Channel.BudgetSpend is
// used, missing values count as zero. Every channel row yields an entry even
// when spend is zero.
func ResolveSpend(
	channels []schema.Channel,
	dailySpend []schema.ChannelSpendDaily,
	source domain.SpendSource,
	lookbackDays *int,
	now time.Time,
) map[string]float64 {
	spend := make(map[string]float64, len(channels))
	for _, ch := range channels {
		spend[ch.ChannelID] = 0
	}

	switch source {
	case domain.SpendSourceChannelTotal:
		for _, ch := range channels {
			if ch.BudgetSpend != nil {
				spend[ch.ChannelID] = *ch.BudgetSpend
			}
		}
	default: // daily
		var cutoff time.Time
		if lookbackDays != nil {
			cutoff = now.AddDate(0, 0, -*lookbackDays)
		}
		for _, row := range dailySpend {
			if lookbackDays != nil && row.Date.Before(cutoff) {
				continue
			}
			spend[row.ChannelID] += row.Spend
		}
	}

	return spend
}

// channelGroup accumulates attributed customers for one channel
type channelGroup struct {
	acquired int
	high     int
	ltvSum   float64
}

// AggregateChannels groups attributed customers by channel and derives the
// per-channel metrics. Channels with zero attributed customers emit no row;
// division by the group size is guarded so no NaN or Inf reaches persistence.
func AggregateChannels(
	ltvByCustomer map[string]*CustomerLTV,
	segmentByCustomer map[string]domain.Segment,
	attribution map[string]string,
	spend map[string]float64,
) []schema.ChannelMetrics {
	groups := make(map[string]*channelGroup)
	for customerID, channelID := range attribution {
		acc, ok := ltvByCustomer[customerID]
		if !ok {
			continue
		}
		g := groups[channelID]
		if g == nil {
			g = &channelGroup{}
			groups[channelID] = g
		}
		g.acquired++
		g.ltvSum += acc.LTV
		if segmentByCustomer[customerID] == domain.SegmentHigh {
			g.high++
		}
	}

	rows := make([]schema.ChannelMetrics, 0, len(groups))
	for channelID, g := range groups {
		row := schema.ChannelMetrics{
			ChannelID:         channelID,
			Spend:             spend[channelID],
			AcquiredCustomers: g.acquired,
			HighLTVCustomers:  g.high,
		}
		if g.acquired > 0 {
			row.HighLTVShare = float64(g.high) / float64(g.acquired)
			row.AvgLTV = g.ltvSum / float64(g.acquired)
			row.CAC = row.Spend / float64(g.acquired)
		}
		row.NetValue = row.AvgLTV - row.CAC
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ChannelID < rows[j].ChannelID
	})

	return rows
}
