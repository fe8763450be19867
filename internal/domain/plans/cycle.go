package plans

import "strings"

type BillingCycle string

const (
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
)

// ParseCycle accepts the cycle names used by the pricing page and by Stripe
// recurring intervals ("month", "year").
func ParseCycle(s string) (BillingCycle, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month":
		return Monthly, true
	case "yearly", "year", "annual", "annually":
		return Yearly, true
	}
	return "", false
}
