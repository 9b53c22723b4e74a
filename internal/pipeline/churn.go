package pipeline

import (
	"time"

	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// ResolveChurn computes the earliest qualifying churn timestamp per customer.
// Events whose type is outside the configured set are excluded entirely.
// Customers absent from the returned map never churned.
func ResolveChurn(events []schema.Event, churnEventTypes []string) map[string]time.Time {
	churnTypes := make(map[string]struct{}, len(churnEventTypes))
	for _, t := range churnEventTypes {
		churnTypes[t] = struct{}{}
	}

	churnedAt := make(map[string]time.Time)
	for _, ev := range events {
		if _, ok := churnTypes[ev.Type]; !ok {
			continue
		}
		if existing, ok := churnedAt[ev.CustomerID]; !ok || ev.Date.Before(existing) {
			churnedAt[ev.CustomerID] = ev.Date
		}
	}

	return churnedAt
}
