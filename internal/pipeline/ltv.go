package pipeline

import (
	"time"

	"github.com/growthplane/ltv-engine/internal/store/schema"
)

// CustomerLTV accumulates the qualifying revenue of one customer
type CustomerLTV struct {
	LTV               float64
	TxnCount          int
	FirstPurchaseDate *time.Time
	LastPurchaseDate  *time.Time
}

// AggregateLTV sums qualifying transaction revenue per customer. A transaction
// qualifies iff the customer had not churned before its date, and it falls
// inside the acquisition-relative window when one is configured. Customers
// without a recorded acquisition date are never window-excluded. Every
// customer in the table gets an entry, zero-valued when nothing qualifies.
func AggregateLTV(
	customers []schema.Customer,
	transactions []schema.Transaction,
	churnedAt map[string]time.Time,
	ltvWindowDays *int,
) map[string]*CustomerLTV {
	byCustomer := make(map[string]*CustomerLTV, len(customers))
	acquisition := make(map[string]*time.Time, len(customers))
	for _, c := range customers {
		byCustomer[c.CustomerID] = &CustomerLTV{}
		acquisition[c.CustomerID] = c.AcquisitionDate
	}

	for _, txn := range transactions {
		acc, ok := byCustomer[txn.CustomerID]
		if !ok {
			// Transaction references a customer the ingestor never wrote.
			continue
		}

		if churn, churned := churnedAt[txn.CustomerID]; churned && txn.Date.After(churn) {
			continue
		}

		if ltvWindowDays != nil {
			if acquired := acquisition[txn.CustomerID]; acquired != nil {
				cutoff := acquired.AddDate(0, 0, *ltvWindowDays)
				if txn.Date.After(cutoff) {
					continue
				}
			}
		}

		acc.LTV += txn.RevenueAmount
		acc.TxnCount++

		date := txn.Date
		if acc.FirstPurchaseDate == nil || date.Before(*acc.FirstPurchaseDate) {
			first := date
			acc.FirstPurchaseDate = &first
		}
		if acc.LastPurchaseDate == nil || date.After(*acc.LastPurchaseDate) {
			last := date
			acc.LastPurchaseDate = &last
		}
	}

	return byCustomer
}
