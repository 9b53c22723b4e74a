package pipeline

import (
	"github.com/growthplane/ltv-engine/internal/domain"
	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// ResolveAttribution builds the single-valued customer-to-channel map.
//
// In acquired_via mode the first edge seen per customer wins. In
// channel_field mode the Customer.ChannelSourceID values are used; when that
// yields an entirely empty map and edges exist, the edge-derived map is
// substituted wholesale. The fallback is all-or-nothing at the mode level,
// never per customer.
func ResolveAttribution(
	customers []schema.Customer,
	edges []schema.AcquiredVia,
	mode domain.AttributionMode,
) map[string]string {
	if mode == domain.AttributionAcquiredVia {
		return attributionFromEdges(edges)
	}

	attributed := make(map[string]string)
	for _, c := range customers {
		if c.ChannelSourceID != nil && *c.ChannelSourceID != "" {
			attributed[c.CustomerID] = *c.ChannelSourceID
		}
	}

	if len(attributed) == 0 && len(edges) > 0 {
		return attributionFromEdges(edges)
	}

	return attributed
}

func attributionFromEdges(edges []schema.AcquiredVia) map[string]string {
	attributed := make(map[string]string)
	for _, e := range edges {
		if _, ok := attributed[e.CustomerID]; ok {
			continue
		}
		attributed[e.CustomerID] = e.ChannelID
	}
	return attributed
}
