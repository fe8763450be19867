package checkout

import (
	"fmt"

	"creator-app/config"
	"creator-app/internal/domain/plans"
)

type priceKey struct {
	plan  plans.ID
	cycle plans.BillingCycle
}

// PriceTable resolves plan/cycle pairs to provider price identifiers.
type PriceTable struct {
	byPair  map[priceKey]string
	byPrice map[string]priceKey
}

func NewPriceTable() *PriceTable {
	return &PriceTable{
		byPair:  map[priceKey]string{},
		byPrice: map[string]priceKey{},
	}
}

// PriceTableFrom builds the table from configuration, skipping empty ids.
func PriceTableFrom(p config.PriceIDs) *PriceTable {
	t := NewPriceTable()
	t.Set(plans.Creator, plans.Monthly, p.CreatorMonthly)
	t.Set(plans.Creator, plans.Yearly, p.CreatorYearly)
	t.Set(plans.Influencer, plans.Monthly, p.InfluencerMonthly)
	t.Set(plans.Influencer, plans.Yearly, p.InfluencerYearly)
	t.Set(plans.Superstar, plans.Monthly, p.SuperstarMonthly)
	t.Set(plans.Superstar, plans.Yearly, p.SuperstarYearly)
	return t
}

func (t *PriceTable) Set(plan plans.ID, cycle plans.BillingCycle, priceID string) *PriceTable {
	if priceID == "" {
		return t
	}
	k := priceKey{plan, cycle}
	t.byPair[k] = priceID
	t.byPrice[priceID] = k
	return t
}

func (t *PriceTable) Lookup(plan plans.ID, cycle plans.BillingCycle) (string, bool) {
	id, ok := t.byPair[priceKey{plan, cycle}]
	return id, ok
}

// Reverse maps a provider price id back to its plan and cycle.
func (t *PriceTable) Reverse(priceID string) (plans.ID, plans.BillingCycle, bool) {
	k, ok := t.byPrice[priceID]
	return k.plan, k.cycle, ok
}

// Missing lists "plan/cycle" pairs without a price id.
func (t *PriceTable) Missing() []string {
	var out []string
	for _, p := range plans.All() {
		for _, c := range []plans.BillingCycle{plans.Monthly, plans.Yearly} {
			if _, ok := t.Lookup(p.ID, c); !ok {
				out = append(out, fmt.Sprintf("%s/%s", p.ID, c))
			}
		}
	}
	return out
}
