package plans

import "strings"

// ID identifies a plan tier. The zero value means "no plan".
type ID string

const (
	None       ID = ""
	Creator    ID = "creator"
	Influencer ID = "influencer"
	Superstar  ID = "superstar"
)

// order is the single source of truth for tier ranking.
var order = []ID{Creator, Influencer, Superstar}

type Feature struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
	// Premium only drives the badge on the pricing card. Gating uses tier order.
	Premium bool `json:"premium"`
}

type Plan struct {
	ID           ID        `json:"id"`
	Name         string    `json:"name"`
	MonthlyPrice int64     `json:"monthly_price"` // minor units (cents)
	YearlyPrice  int64     `json:"yearly_price"`
	Features     []Feature `json:"features"`
}

func (p Plan) Price(cycle BillingCycle) int64 {
	if cycle == Yearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

var catalog = map[ID]Plan{
	Creator: {
		ID:           Creator,
		Name:         "Creator",
		MonthlyPrice: 1900,
		YearlyPrice:  19000,
		Features: []Feature{
			{Name: "Analytics dashboard", Included: true},
			{Name: "Content scheduler", Included: true},
			{Name: "Social connections (3 accounts)", Included: true},
			{Name: "AI content calendar", Included: false, Premium: true},
			{Name: "Viral score predictions", Included: false, Premium: true},
			{Name: "Monetization hub", Included: false, Premium: true},
			{Name: "Brand deal marketplace", Included: false, Premium: true},
		},
	},
	Influencer: {
		ID:           Influencer,
		Name:         "Influencer",
		MonthlyPrice: 4900,
		YearlyPrice:  49000,
		Features: []Feature{
			{Name: "Analytics dashboard", Included: true},
			{Name: "Content scheduler", Included: true},
			{Name: "Social connections (10 accounts)", Included: true},
			{Name: "AI content calendar", Included: true, Premium: true},
			{Name: "Viral score predictions", Included: true, Premium: true},
			{Name: "Monetization hub", Included: true, Premium: true},
			{Name: "Brand deal marketplace", Included: false, Premium: true},
		},
	},
	Superstar: {
		ID:           Superstar,
		Name:         "Superstar",
		MonthlyPrice: 9900,
		YearlyPrice:  99000,
		Features: []Feature{
			{Name: "Advanced analytics", Included: true},
			{Name: "Content scheduler", Included: true},
			{Name: "Unlimited social connections", Included: true},
			{Name: "AI content calendar", Included: true, Premium: true},
			{Name: "Viral score predictions", Included: true, Premium: true},
			{Name: "Monetization hub", Included: true, Premium: true},
			{Name: "Brand deal marketplace", Included: true, Premium: true},
			{Name: "Priority support", Included: true, Premium: true},
		},
	},
}

// Get returns the plan for id. ok is false for unknown ids.
func Get(id ID) (Plan, bool) {
	p, ok := catalog[id]
	return p, ok
}

// All returns the plans cheapest first.
func All() []Plan {
	out := make([]Plan, 0, len(order))
	for _, id := range order {
		out = append(out, catalog[id])
	}
	return out
}

// ParseID normalises a stored plan name ("Influencer", " superstar ") into an ID.
// Unknown names yield None.
func ParseID(name string) ID {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := catalog[id]; ok {
		return id
	}
	return None
}

// Rank is the position of id in tier order, or -1 when id is not a catalog tier.
func Rank(id ID) int {
	for i, o := range order {
		if o == id {
			return i
		}
	}
	return -1
}
