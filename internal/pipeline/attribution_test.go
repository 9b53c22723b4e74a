package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/pipeline"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

func strPtr(s string) *string {
	return &s
}

func TestResolveAttribution_ChannelField(t *testing.T) {
	customers := []schema.Customer{
		{CustomerID: "c1", ChannelSourceID: strPtr("paid")},
		{CustomerID: "c2", ChannelSourceID: strPtr("brand")},
		{CustomerID: "c3"},
		{CustomerID: "c4", ChannelSourceID: strPtr("")},
	}

	got := pipeline.ResolveAttribution(customers, nil, domain.AttributionChannelField)

	assert.Equal(t, map[string]string{"c1": "paid", "c2": "brand"}, got)
}

func TestResolveAttribution_AcquiredVia_FirstEdgeWins(t *testing.T) {
	edges := []schema.AcquiredVia{
		{CustomerID: "c1", ChannelID: "partner"},
		{CustomerID: "c1", ChannelID: "paid"},
		{CustomerID: "c2", ChannelID: "partner"},
	}

	got := pipeline.ResolveAttribution(nil, edges, domain.AttributionAcquiredVia)

	assert.Equal(t, map[string]string{"c1": "partner", "c2": "partner"}, got)
}

func TestResolveAttribution_ChannelFieldFallsBackToEdgesWhenEmpty(t *testing.T) {
	customers := []schema.Customer{
		{CustomerID: "c1"},
		{CustomerID: "c2"},
	}
	edges := []schema.AcquiredVia{
		{CustomerID: "c1", ChannelID: "referral"},
	}

	got := pipeline.ResolveAttribution(customers, edges, domain.AttributionChannelField)

	assert.Equal(t, map[string]string{"c1": "referral"}, got)
}

func TestResolveAttribution_NoPerCustomerFallback(t *testing.T) {
	// The fallback is all-or-nothing: once any customer carries a field
	// value, customers without one stay unattributed even when edges exist.
	customers := []schema.Customer{
		{CustomerID: "c1", ChannelSourceID: strPtr("paid")},
		{CustomerID: "c2"},
	}
	edges := []schema.AcquiredVia{
		{CustomerID: "c2", ChannelID: "referral"},
	}

	got := pipeline.ResolveAttribution(customers, edges, domain.AttributionChannelField)

	assert.Equal(t, map[string]string{"c1": "paid"}, got)
}

func TestResolveAttribution_EmptyEverything(t *testing.T) {
	assert.Empty(t, pipeline.ResolveAttribution(nil, nil, domain.AttributionChannelField))
	assert.Empty(t, pipeline.ResolveAttribution(nil, nil, domain.AttributionAcquiredVia))
}
