package recommender

import (
	"fmt"
	"math"
	"sort"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// candidate is one channel viewed through a strategy's eyes. Ratio is the
// blended ltv:cac signal, +Inf when the channel acquired customers for free.
type candidate struct {
	ChannelID         string
	Spend             float64
	CAC               float64
	AvgLTV            float64
	NetValue          float64
	AcquiredCustomers int
	HighLTVShare      float64
	Ratio             float64
}

func newCandidate(m schema.ChannelMetrics) candidate {
	return candidate{
		ChannelID:         m.ChannelID,
		Spend:             m.Spend,
		CAC:               m.CAC,
		AvgLTV:            m.AvgLTV,
		NetValue:          m.NetValue,
		AcquiredCustomers: m.AcquiredCustomers,
		HighLTVShare:      m.HighLTVShare,
		Ratio:             ltvCACRatio(m.AvgLTV, m.CAC),
	}
}

func ltvCACRatio(avgLTV, cac float64) float64 {
	if cac == 0 {
		if avgLTV > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return avgLTV / cac
}

// selector picks a strategy's target channels as an ordered list. The
// predicate set is tried first; when it matches nothing, the fallback takes
// the best fallbackCount candidates so every strategy always has somewhere to
// move budget. fallbackLess overrides the ordering on the fallback path.
type selector struct {
	predicate     func(candidate) bool
	less          func(a, b candidate) bool
	cap           int
	fallbackCount int
	fallbackLess  func(a, b candidate) bool
}

func (s selector) pick(candidates []candidate) []candidate {
	matched := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if s.predicate(c) {
			matched = append(matched, c)
		}
	}

	limit := s.cap
	less := s.less
	if len(matched) == 0 {
		matched = append(matched, candidates...)
		limit = s.fallbackCount
		if s.fallbackLess != nil {
			less = s.fallbackLess
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j])
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched
}

// strategySpec bundles everything one reallocation heuristic needs: how much
// of the total spend to move and how to choose and explain both sides of the
// transfer.
type strategySpec struct {
	shiftFraction     float64
	increase          selector
	decrease          selector
	increaseRationale func(candidate) string
	decreaseRationale func(candidate) string
	heldRationale     string
}

var strategies = map[domain.Strategy]strategySpec{
	domain.StrategyHighEfficiency: {
		shiftFraction: 0.12,
		increase: selector{
			predicate: func(c candidate) bool {
				return c.HighLTVShare >= 0.3 && c.Ratio >= 2
			},
			less:          byHighShareDesc,
			fallbackCount: 3,
		},
		decrease: selector{
			predicate: func(c candidate) bool {
				return c.Ratio < 1.2 || c.HighLTVShare < 0.15
			},
			less:          byRatioAsc,
			fallbackCount: 2,
		},
		increaseRationale: func(c candidate) string {
			return fmt.Sprintf("strong HIGH-LTV share %.0f%% at ltv:cac %s; scale acquisition here",
				c.HighLTVShare*100, formatRatio(c.Ratio))
		},
		decreaseRationale: func(c candidate) string {
			return fmt.Sprintf("weak efficiency: ltv:cac %s with HIGH-LTV share %.0f%%; trim spend",
				formatRatio(c.Ratio), c.HighLTVShare*100)
		},
		heldRationale: "efficiency within acceptable band; hold spend steady",
	},
	domain.StrategyMaximizeRevenue: {
		shiftFraction: 0.18,
		increase: selector{
			predicate: func(c candidate) bool {
				return c.NetValue > 0
			},
			less:          byRevenuePotentialDesc,
			fallbackCount: 3,
		},
		decrease: selector{
			predicate: func(c candidate) bool {
				return c.NetValue <= 0 || c.Ratio < 1.4
			},
			less:          byRatioAsc,
			fallbackCount: 2,
		},
		increaseRationale: func(c candidate) string {
			return fmt.Sprintf("positive net value %.2f across %d customers; fund further growth",
				c.NetValue, c.AcquiredCustomers)
		},
		decreaseRationale: func(c candidate) string {
			return fmt.Sprintf("net value %.2f at ltv:cac %s drags revenue; reduce spend",
				c.NetValue, formatRatio(c.Ratio))
		},
		heldRationale: "revenue contribution stable; hold spend steady",
	},
	domain.StrategyStability: {
		shiftFraction: 0.06,
		increase: selector{
			predicate: func(c candidate) bool {
				return c.Ratio >= 2 && c.Ratio <= 3.5
			},
			less:          byRatioDesc,
			cap:           4,
			fallbackCount: 2,
			fallbackLess:  byHighShareDesc,
		},
		decrease: selector{
			predicate: func(c candidate) bool {
				return c.Ratio < 1.2
			},
			less:          byRatioAsc,
			fallbackCount: 2,
		},
		increaseRationale: func(c candidate) string {
			return fmt.Sprintf("steady ltv:cac %s sits in the reliable band; modest increase", formatRatio(c.Ratio))
		},
		decreaseRationale: func(c candidate) string {
			return fmt.Sprintf("ltv:cac %s below sustainable floor; modest reduction", formatRatio(c.Ratio))
		},
		heldRationale: "performance steady; hold spend at current level",
	},
}

func byHighShareDesc(a, b candidate) bool {
	if a.HighLTVShare != b.HighLTVShare {
		return a.HighLTVShare > b.HighLTVShare
	}
	return a.ChannelID < b.ChannelID
}

func byRatioAsc(a, b candidate) bool {
	if a.Ratio != b.Ratio {
		return a.Ratio < b.Ratio
	}
	return a.ChannelID < b.ChannelID
}

func byRatioDesc(a, b candidate) bool {
	if a.Ratio != b.Ratio {
		return a.Ratio > b.Ratio
	}
	return a.ChannelID < b.ChannelID
}

func byRevenuePotentialDesc(a, b candidate) bool {
	pa := a.AvgLTV * float64(a.AcquiredCustomers)
	pb := b.AvgLTV * float64(b.AcquiredCustomers)
	if pa != pb {
		return pa > pb
	}
	if a.NetValue != b.NetValue {
		return a.NetValue > b.NetValue
	}
	return a.ChannelID < b.ChannelID
}

func formatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "unbounded"
	}
	return fmt.Sprintf("%.2f", r)
}
