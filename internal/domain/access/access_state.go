package access

import (
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
)

// EffectiveTier is the tier of the user's active subscription, or plans.None.
func EffectiveTier(now time.Time, sub *billing.Subscription) plans.ID {
	if !sub.IsActive(now) {
		return plans.None
	}
	return sub.Plan()
}

// CanAccess reports whether sub unlocks f. A nil or inactive subscription and
// unknown feature keys are always denied.
func CanAccess(now time.Time, f Feature, sub *billing.Subscription) bool {
	return TierAllows(EffectiveTier(now, sub), f)
}

// Capabilities lists every feature sub unlocks, in catalog order.
func Capabilities(now time.Time, sub *billing.Subscription) []Feature {
	tier := EffectiveTier(now, sub)
	out := []Feature{}
	for _, f := range allFeatures {
		if TierAllows(tier, f) {
			out = append(out, f)
		}
	}
	return out
}
