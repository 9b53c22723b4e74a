// Package recommender turns a project's channel metrics into a bounded spend
// reallocation proposal. Each strategy moves a fixed fraction of total current
// spend from its decrease targets to its increase targets; channels outside
// both sets keep their spend and the batch conserves total spend up to the
// per-channel floor at zero.
package recommender

import (
	"math"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// BuildPlan proposes one plan item per input channel under the given strategy.
// Items come back in the input order of metrics. An unknown strategy returns
// domain.ErrUnknownStrategy; with no viable increase target the plan holds
// every channel at its current spend.
func BuildPlan(metrics []schema.ChannelMetrics, strategy domain.Strategy) ([]domain.PlanItem, error) {
	spec, ok := strategies[strategy]
	if !ok {
		return nil, domain.ErrUnknownStrategy
	}

	candidates := make([]candidate, 0, len(metrics))
	totalSpend := 0.0
	for _, m := range metrics {
		candidates = append(candidates, newCandidate(m))
		totalSpend += m.Spend
	}
	if len(candidates) == 0 {
		return []domain.PlanItem{}, nil
	}

	increase := spec.increase.pick(candidates)
	if len(increase) == 0 {
		return heldPlan(candidates, spec), nil
	}
	increaseSet := make(map[string]bool, len(increase))
	for _, c := range increase {
		increaseSet[c.ChannelID] = true
	}

	decrease := make([]candidate, 0)
	for _, c := range spec.decrease.pick(candidates) {
		if !increaseSet[c.ChannelID] {
			decrease = append(decrease, c)
		}
	}

	// Decrease pass: each target absorbs an even running share of the budget,
	// clipped at its own spend. A clipped target's shortfall is dropped, not
	// pushed onto later targets.
	decreaseBudget := spec.shiftFraction * totalSpend
	cuts := make(map[string]float64, len(decrease))
	actualDecrease := 0.0
	remaining := decreaseBudget
	for i, c := range decrease {
		share := remaining / float64(len(decrease)-i)
		cut := math.Min(share, c.Spend)
		cuts[c.ChannelID] = cut
		actualDecrease += cut
		remaining -= share
	}
	if actualDecrease == 0 {
		return heldPlan(candidates, spec), nil
	}

	// Increase pass: redistribute exactly what was removed.
	adds := make(map[string]float64, len(increase))
	remaining = actualDecrease
	for i := range increase {
		add := remaining / float64(len(increase)-i)
		adds[increase[i].ChannelID] = add
		remaining -= add
	}

	items := make([]domain.PlanItem, 0, len(candidates))
	for _, c := range candidates {
		item := domain.PlanItem{
			ChannelID:     c.ChannelID,
			CurrentSpend:  c.Spend,
			ProposedSpend: c.Spend,
			Rationale:     spec.heldRationale,
		}
		if add, ok := adds[c.ChannelID]; ok {
			item.ProposedSpend = c.Spend + add
			item.Delta = add
			item.Rationale = spec.increaseRationale(c)
		} else if cut, ok := cuts[c.ChannelID]; ok {
			item.ProposedSpend = c.Spend - cut
			item.Delta = -cut
			item.Rationale = spec.decreaseRationale(c)
		}
		items = append(items, item)
	}

	return items, nil
}

func heldPlan(candidates []candidate, spec strategySpec) []domain.PlanItem {
	items := make([]domain.PlanItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, domain.PlanItem{
			ChannelID:     c.ChannelID,
			CurrentSpend:  c.Spend,
			ProposedSpend: c.Spend,
			Rationale:     spec.heldRationale,
		})
	}
	return items
}
