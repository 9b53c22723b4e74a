package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
)

func TestSegmentThresholds_IndexBasedQuantile(t *testing.T) {
	// Ten values: index for q is floor((n-1)*q), inclusive, no interpolation.
	ltvs := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	high, mid := pipeline.SegmentThresholds(ltvs, 0.8, 0.5)

	// floor(9*0.8) = 7 -> 80, floor(9*0.5) = 4 -> 50
	assert.Equal(t, 80.0, high)
	assert.Equal(t, 50.0, mid)
}

func TestSegmentThresholds_UnsortedInputAndTies(t *testing.T) {
	ltvs := []float64{50, 10, 50, 30, 50}

	high, mid := pipeline.SegmentThresholds(ltvs, 0.8, 0.5)

	// sorted: 10 30 50 50 50; floor(4*0.8)=3 -> 50, floor(4*0.5)=2 -> 50
	assert.Equal(t, 50.0, high)
	assert.Equal(t, 50.0, mid)
}

func TestSegmentThresholds_Empty(t *testing.T) {
	high, mid := pipeline.SegmentThresholds(nil, 0.8, 0.5)

	assert.Equal(t, 0.0, high)
	assert.Equal(t, 0.0, mid)
}

func TestSegmentThresholds_DoesNotMutateInput(t *testing.T) {
	ltvs := []float64{3, 1, 2}

	pipeline.SegmentThresholds(ltvs, 0.8, 0.5)

	assert.Equal(t, []float64{3, 1, 2}, ltvs)
}

func TestAssignSegment_InclusiveBoundaries(t *testing.T) {
	tests := []struct {
		name string
		ltv  float64
		want domain.Segment
	}{
		{"above high", 120, domain.SegmentHigh},
		{"at high threshold", 80, domain.SegmentHigh},
		{"between thresholds", 60, domain.SegmentMid},
		{"at mid threshold", 50, domain.SegmentMid},
		{"below mid", 49.99, domain.SegmentLow},
		{"negative", -10, domain.SegmentLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.AssignSegment(tt.ltv, 80, 50))
		})
	}
}

func TestAssignSegment_AllZeroPopulation(t *testing.T) {
	// When every LTV is zero both thresholds collapse to zero and the
	// inclusive rule puts everyone in HIGH.
	high, mid := pipeline.SegmentThresholds([]float64{0, 0, 0}, 0.8, 0.5)

	assert.Equal(t, 0.0, high)
	assert.Equal(t, 0.0, mid)
	assert.Equal(t, domain.SegmentHigh, pipeline.AssignSegment(0, high, mid))
}
