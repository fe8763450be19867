package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-app/internal/domain/access"
	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func subscriptionOf(plan, status string) *billing.Subscription {
	return &billing.Subscription{PlanName: plan, BillingCycle: "monthly", Status: status}
}

func TestCanAccessWithoutSubscription(t *testing.T) {
	t.Parallel()

	for _, f := range access.Features() {
		assert.False(t, access.CanAccess(now, f, nil), f)
	}
	assert.Equal(t, plans.None, access.EffectiveTier(now, nil))
	assert.Empty(t, access.Capabilities(now, nil))
}

func TestCanAccessInactiveSubscription(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"past_due", "incomplete", "inactive", ""} {
		sub := subscriptionOf("superstar", status)
		assert.False(t, access.CanAccess(now, access.FeatureAnalytics, sub), status)
	}
}

func TestCanceledKeepsAccessUntilPeriodEnd(t *testing.T) {
	t.Parallel()

	later := now.Add(48 * time.Hour)
	sub := subscriptionOf("influencer", "canceled")
	sub.CurrentPeriodEnd = &later
	assert.True(t, access.CanAccess(now, access.FeatureMonetization, sub))
	assert.False(t, access.CanAccess(later.Add(time.Second), access.FeatureMonetization, sub))
}

func TestCanAccessMonotonicInTier(t *testing.T) {
	t.Parallel()

	all := plans.All()
	for _, f := range access.Features() {
		granted := false
		for _, p := range all {
			ok := access.CanAccess(now, f, subscriptionOf(string(p.ID), "active"))
			if granted {
				assert.True(t, ok, "%s lost at %s", f, p.ID)
			}
			granted = granted || ok
		}
		assert.True(t, granted, "%s is never granted", f)
	}
}

func TestCanAccessMatchesMinimumTier(t *testing.T) {
	t.Parallel()

	sub := subscriptionOf("Influencer", "active")
	assert.True(t, access.CanAccess(now, access.FeatureAnalytics, sub))
	assert.True(t, access.CanAccess(now, access.FeatureAICalendar, sub))
	assert.False(t, access.CanAccess(now, access.FeatureBrandDeals, sub))
	assert.False(t, access.CanAccess(now, access.Feature("time_travel"), sub))

	assert.Equal(t, plans.Influencer, access.EffectiveTier(now, sub))
	assert.NotContains(t, access.Capabilities(now, sub), access.FeaturePrioritySupport)
	assert.Contains(t, access.Capabilities(now, sub), access.FeatureViralScore)
}

func TestUnknownPlanNameGrantsNothing(t *testing.T) {
	t.Parallel()

	sub := subscriptionOf("gold", "active")
	assert.Equal(t, plans.None, access.EffectiveTier(now, sub))
	assert.False(t, access.CanAccess(now, access.FeatureAnalytics, sub))
}

func TestGateDashboard(t *testing.T) {
	t.Parallel()

	t.Run("no subscription locks every panel", func(t *testing.T) {
		t.Parallel()
		views := access.GateDashboard(now, nil)
		require.Len(t, views, len(access.DashboardPanels))
		for _, v := range views {
			assert.True(t, v.Locked, v.Key)
			require.NotNil(t, v.Upsell)
			assert.Equal(t, "/pricing", v.Upsell.CTA)
		}
	})

	t.Run("creator sees basic panels only", func(t *testing.T) {
		t.Parallel()
		views := access.GateDashboard(now, subscriptionOf("creator", "active"))
		locked := map[access.PanelKey]bool{}
		for _, v := range views {
			locked[v.Key] = v.Locked
		}
		assert.False(t, locked[access.PanelAnalytics])
		assert.False(t, locked[access.PanelContent])
		assert.False(t, locked[access.PanelSocial])
		assert.True(t, locked[access.PanelMonetize])
		assert.True(t, locked[access.PanelAICalendar])
	})

	t.Run("upsell names the required plan", func(t *testing.T) {
		t.Parallel()
		v := access.GatePanel(now, access.DashboardPanels[2], nil)
		require.NotNil(t, v.Upsell)
		assert.Equal(t, plans.Influencer, v.Upsell.RequiredPlan)
		assert.Contains(t, v.Upsell.Message, "Influencer")
	})

	t.Run("locked dashboard", func(t *testing.T) {
		t.Parallel()
		for _, v := range access.LockedDashboard() {
			assert.True(t, v.Locked)
		}
	})
}
