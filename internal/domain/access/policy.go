package access

import (
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
)

type Panel struct {
	Key     PanelKey
	Title   string
	Feature Feature
}

// DashboardPanels is the gated panel set, in display order.
var DashboardPanels = []Panel{
	{Key: PanelAnalytics, Title: "Analytics", Feature: FeatureAnalytics},
	{Key: PanelContent, Title: "Content Scheduling", Feature: FeatureContentScheduler},
	{Key: PanelMonetize, Title: "Monetization", Feature: FeatureMonetization},
	{Key: PanelSocial, Title: "Social Connections", Feature: FeatureSocialConnections},
	{Key: PanelAICalendar, Title: "AI Content Calendar", Feature: FeatureAICalendar},
}

type Upsell struct {
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	CTA          string   `json:"cta"`
	RequiredPlan plans.ID `json:"required_plan"`
}

type PanelView struct {
	Key     PanelKey `json:"key"`
	Title   string   `json:"title"`
	Feature Feature  `json:"feature"`
	Locked  bool     `json:"locked"`
	Upsell  *Upsell  `json:"upsell,omitempty"`
}

// GatePanel decides a single panel. Panels do not depend on each other.
func GatePanel(now time.Time, p Panel, sub *billing.Subscription) PanelView {
	v := PanelView{Key: p.Key, Title: p.Title, Feature: p.Feature}
	if CanAccess(now, p.Feature, sub) {
		return v
	}
	v.Locked = true
	v.Upsell = upsellFor(p)
	return v
}

func GateDashboard(now time.Time, sub *billing.Subscription) []PanelView {
	out := make([]PanelView, 0, len(DashboardPanels))
	for _, p := range DashboardPanels {
		out = append(out, GatePanel(now, p, sub))
	}
	return out
}

// LockedDashboard is used when the subscription could not be loaded.
func LockedDashboard() []PanelView {
	return GateDashboard(time.Time{}, nil)
}

func upsellFor(p Panel) *Upsell {
	required, _ := MinimumTier(p.Feature)
	name := string(required)
	if plan, ok := plans.Get(required); ok {
		name = plan.Name
	}
	return &Upsell{
		Title:        "Unlock " + p.Title,
		Message:      "Upgrade to " + name + " to use " + p.Title + ".",
		CTA:          "/pricing",
		RequiredPlan: required,
	}
}
