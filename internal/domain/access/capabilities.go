package access

import "creator-app/internal/domain/plans"

// minimumTier is the cheapest plan that unlocks each feature.
var minimumTier = map[Feature]plans.ID{
	FeatureAnalytics:         plans.Creator,
	FeatureContentScheduler:  plans.Creator,
	FeatureSocialConnections: plans.Creator,
	FeatureAICalendar:        plans.Influencer,
	FeatureViralScore:        plans.Influencer,
	FeatureMonetization:      plans.Influencer,
	FeatureAdvancedAnalytics: plans.Superstar,
	FeatureBrandDeals:        plans.Superstar,
	FeaturePrioritySupport:   plans.Superstar,
}

// allFeatures keeps Capabilities output stable.
var allFeatures = []Feature{
	FeatureAnalytics,
	FeatureContentScheduler,
	FeatureSocialConnections,
	FeatureAICalendar,
	FeatureViralScore,
	FeatureMonetization,
	FeatureAdvancedAnalytics,
	FeatureBrandDeals,
	FeaturePrioritySupport,
}

// MinimumTier returns the plan required for f. ok is false for unknown features.
func MinimumTier(f Feature) (plans.ID, bool) {
	t, ok := minimumTier[f]
	return t, ok
}

func Features() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// TierAllows is the pure tier comparison behind CanAccess.
func TierAllows(tier plans.ID, f Feature) bool {
	required, ok := minimumTier[f]
	if !ok {
		return false
	}
	r := plans.Rank(tier)
	return r >= 0 && r >= plans.Rank(required)
}
