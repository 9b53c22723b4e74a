package pipeline

import (
	"math"
	"sort"

	"github.com/growthplane/ltv-engine/internal/domain"
)

// SegmentThresholds derives the HIGH and MID LTV cutoffs from the population.
// The rule is index-based, not interpolated: sort ascending and take the value
// at floor((n-1)*q). Returns zeros when the population is empty.
func SegmentThresholds(ltvs []float64, highQuantile, midQuantile float64) (high, mid float64) {
	n := len(ltvs)
	if n == 0 {
		return 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, ltvs)
	sort.Float64s(sorted)

	return sorted[quantileIndex(n, highQuantile)], sorted[quantileIndex(n, midQuantile)]
}

// AssignSegment places one LTV value relative to the thresholds. The
// comparisons are inclusive, so ties at a threshold land in the higher tier.
func AssignSegment(ltv, highThreshold, midThreshold float64) domain.Segment {
	switch {
	case ltv >= highThreshold:
		return domain.SegmentHigh
	case ltv >= midThreshold:
		return domain.SegmentMid
	default:
		return domain.SegmentLow
	}
}

func quantileIndex(n int, q float64) int {
	idx := int(math.Floor(float64(n-1) * q))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}
