package pipeline

import (
	"sort"
	"time"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// Compute runs the full metrics pipeline over one project snapshot. It is a
// pure function: no I/O, no clock reads beyond the injected now, deterministic
// output ordering. Recomputing an unchanged snapshot yields identical rows.
func Compute(snapshot *Snapshot, cfg domain.ModelConfig, now time.Time) *Result {
	cfg = cfg.Normalize()

	churnedAt := ResolveChurn(snapshot.Events, cfg.ChurnEventTypes)
	ltvByCustomer := AggregateLTV(snapshot.Customers, snapshot.Transactions, churnedAt, cfg.LTVWindowDays)

	ltvs := make([]float64, 0, len(ltvByCustomer))
	for _, acc := range ltvByCustomer {
		ltvs = append(ltvs, acc.LTV)
	}
	highThr, midThr := SegmentThresholds(ltvs, cfg.SegmentHighQuantile, cfg.SegmentMidQuantile)

	segmentByCustomer := make(map[string]domain.Segment, len(ltvByCustomer))
	for customerID, acc := range ltvByCustomer {
		segmentByCustomer[customerID] = AssignSegment(acc.LTV, highThr, midThr)
	}

	attribution := ResolveAttribution(snapshot.Customers, snapshot.AcquiredVia, cfg.AttributionMode)
	spend := ResolveSpend(snapshot.Channels, snapshot.DailySpend, cfg.CACSpendSource, cfg.CACLookbackDays, now)

	return &Result{
		CustomerMetrics: buildCustomerRows(ltvByCustomer, segmentByCustomer),
		SegmentMetrics:  buildSegmentRows(ltvByCustomer, segmentByCustomer),
		ChannelMetrics:  AggregateChannels(ltvByCustomer, segmentByCustomer, attribution, spend),
	}
}

func buildCustomerRows(
	ltvByCustomer map[string]*CustomerLTV,
	segmentByCustomer map[string]domain.Segment,
) []schema.CustomerMetrics {
	rows := make([]schema.CustomerMetrics, 0, len(ltvByCustomer))
	for customerID, acc := range ltvByCustomer {
		rows = append(rows, schema.CustomerMetrics{
			CustomerID:        customerID,
			LTV:               acc.LTV,
			LTVSegment:        string(segmentByCustomer[customerID]),
			TxnCount:          acc.TxnCount,
			FirstPurchaseDate: acc.FirstPurchaseDate,
			LastPurchaseDate:  acc.LastPurchaseDate,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CustomerID < rows[j].CustomerID
	})

	return rows
}

func buildSegmentRows(
	ltvByCustomer map[string]*CustomerLTV,
	segmentByCustomer map[string]domain.Segment,
) []schema.SegmentMetrics {
	counts := make(map[domain.Segment]int)
	totals := make(map[domain.Segment]float64)
	for customerID, acc := range ltvByCustomer {
		seg := segmentByCustomer[customerID]
		counts[seg]++
		totals[seg] += acc.LTV
	}

	rows := make([]schema.SegmentMetrics, 0, len(counts))
	for _, seg := range domain.Segments {
		count := counts[seg]
		if count == 0 {
			continue
		}
		rows = append(rows, schema.SegmentMetrics{
			Segment:       string(seg),
			CustomerCount: count,
			AvgLTV:        totals[seg] / float64(count),
			TotalRevenue:  totals[seg],
		})
	}

	return rows
}
