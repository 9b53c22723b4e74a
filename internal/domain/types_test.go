package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthplane/ltv-engine/internal/domain"
)

func TestDefaultModelConfig(t *testing.T) {
	cfg := domain.DefaultModelConfig()

	assert.Nil(t, cfg.LTVWindowDays)
	assert.Nil(t, cfg.CACLookbackDays)
	assert.Equal(t, 0.8, cfg.SegmentHighQuantile)
	assert.Equal(t, 0.5, cfg.SegmentMidQuantile)
	assert.Equal(t, domain.AttributionChannelField, cfg.AttributionMode)
	assert.Equal(t, domain.SpendSourceDaily, cfg.CACSpendSource)
	assert.Equal(t, []string{"churned"}, cfg.ChurnEventTypes)
}

func TestModelConfig_Normalize_MalformedQuantiles(t *testing.T) {
	tests := []struct {
		name string
		high float64
		mid  float64
	}{
		{"zero quantiles", 0, 0},
		{"above one", 1.5, 0.5},
		{"negative", 0.8, -0.2},
		{"high below mid", 0.4, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.ModelConfig{
				SegmentHighQuantile: tt.high,
				SegmentMidQuantile:  tt.mid,
				AttributionMode:     domain.AttributionAcquiredVia,
				CACSpendSource:      domain.SpendSourceChannelTotal,
				ChurnEventTypes:     []string{"cancelled"},
			}

			got := cfg.Normalize()

			// The quantile pair falls back together, everything else is kept.
			assert.Equal(t, 0.8, got.SegmentHighQuantile)
			assert.Equal(t, 0.5, got.SegmentMidQuantile)
			assert.Equal(t, domain.AttributionAcquiredVia, got.AttributionMode)
			assert.Equal(t, domain.SpendSourceChannelTotal, got.CACSpendSource)
			assert.Equal(t, []string{"cancelled"}, got.ChurnEventTypes)
		})
	}
}

func TestModelConfig_Normalize_UnknownModes(t *testing.T) {
	cfg := domain.ModelConfig{
		SegmentHighQuantile: 0.9,
		SegmentMidQuantile:  0.6,
		AttributionMode:     "last_touch",
		CACSpendSource:      "weekly",
	}

	got := cfg.Normalize()

	assert.Equal(t, domain.AttributionChannelField, got.AttributionMode)
	assert.Equal(t, domain.SpendSourceDaily, got.CACSpendSource)
	assert.Equal(t, 0.9, got.SegmentHighQuantile)
	assert.Equal(t, 0.6, got.SegmentMidQuantile)
}

func TestModelConfig_Normalize_NegativeWindows(t *testing.T) {
	window := -30
	lookback := -7
	cfg := domain.DefaultModelConfig()
	cfg.LTVWindowDays = &window
	cfg.CACLookbackDays = &lookback

	got := cfg.Normalize()

	assert.Nil(t, got.LTVWindowDays)
	assert.Nil(t, got.CACLookbackDays)
}

func TestIsValidStrategy(t *testing.T) {
	assert.True(t, domain.IsValidStrategy(domain.StrategyHighEfficiency))
	assert.True(t, domain.IsValidStrategy(domain.StrategyMaximizeRevenue))
	assert.True(t, domain.IsValidStrategy(domain.StrategyStability))
	assert.False(t, domain.IsValidStrategy("roi_chaser"))
}
