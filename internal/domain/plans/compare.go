package plans

type Outcome string

const (
	OutcomeNoPlan        Outcome = "no-plan"
	OutcomeUpgrade       Outcome = "is-upgrade"
	OutcomeCurrent       Outcome = "is-current"
	OutcomeAnnualUpgrade Outcome = "is-annual-upgrade"
	// OutcomeDowngrade is never surfaced to the user; see Comparison.Offerable.
	OutcomeDowngrade Outcome = "downgrade"
)

type Comparison struct {
	Outcome Outcome
	Target  ID
	Cycle   BillingCycle
}

// Offerable reports whether the pricing page should show a purchase action.
func (c Comparison) Offerable() bool {
	switch c.Outcome {
	case OutcomeNoPlan, OutcomeUpgrade, OutcomeAnnualUpgrade:
		return true
	}
	return false
}

// Compare decides what buying target/targetCycle means for a user currently on
// currentPlan/currentCycle. currentPlan is the raw stored plan name; a name that
// does not match a tier (case-insensitively) counts as no plan.
func Compare(currentPlan string, currentCycle BillingCycle, target ID, targetCycle BillingCycle) Comparison {
	c := Comparison{Target: target, Cycle: targetCycle}

	cur := Rank(ParseID(currentPlan))
	if cur < 0 {
		c.Outcome = OutcomeNoPlan
		return c
	}

	tgt := Rank(target)
	switch {
	case tgt > cur:
		c.Outcome = OutcomeUpgrade
	case tgt < cur:
		c.Outcome = OutcomeDowngrade
	case currentCycle == targetCycle:
		c.Outcome = OutcomeCurrent
	case currentCycle == Monthly && targetCycle == Yearly:
		c.Outcome = OutcomeAnnualUpgrade
	default:
		// yearly -> monthly on the same tier
		c.Outcome = OutcomeDowngrade
	}
	return c
}

// Option is one plan as shown on the pricing page for a given cycle.
type Option struct {
	Plan    Plan         `json:"plan"`
	Cycle   BillingCycle `json:"billing_cycle"`
	Price   int64        `json:"price"`
	Outcome Outcome      `json:"status"`
	CanBuy  bool         `json:"can_buy"`
}

// Options lists the plans for cycle relative to the user's current plan.
// Downgrades are dropped entirely rather than returned disabled.
func Options(currentPlan string, currentCycle BillingCycle, cycle BillingCycle) []Option {
	var out []Option
	for _, p := range All() {
		cmp := Compare(currentPlan, currentCycle, p.ID, cycle)
		if cmp.Outcome == OutcomeDowngrade {
			continue
		}
		out = append(out, Option{
			Plan:    p,
			Cycle:   cycle,
			Price:   p.Price(cycle),
			Outcome: cmp.Outcome,
			CanBuy:  cmp.Offerable(),
		})
	}
	return out
}
