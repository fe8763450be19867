package users

import (
	"time"

	"creator-app/internal/domain/access"
	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/domain/users"
	"creator-app/internal/service/session"
)

func BuildUserDTO(u *users.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		AuthProvider:   u.AuthProvider,
		EmailConfirmed: u.EmailConfirmed,
	}
}

// BuildPlanDTO describes the plan of the active subscription, nil otherwise.
func BuildPlanDTO(now time.Time, sub *billing.Subscription) *PlanDTO {
	if !sub.IsActive(now) {
		return nil
	}
	p, ok := plans.Get(sub.Plan())
	if !ok {
		return nil
	}
	return &PlanDTO{
		Key:          p.ID,
		Name:         p.Name,
		BillingCycle: sub.Cycle(),
		Price:        p.Price(sub.Cycle()),
	}
}

func BuildSubscriptionDTO(now time.Time, sub *billing.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		Status:           billing.NormalizeStatus(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Active:           sub.IsActive(now),
		CanManage:        sub.ProviderCustomerID != nil && *sub.ProviderCustomerID != "",
	}
}

func BuildAccessDTO(now time.Time, sub *billing.Subscription) AccessDTO {
	caps := access.Capabilities(now, sub)
	if caps == nil {
		caps = []access.Feature{}
	}
	return AccessDTO{Tier: access.EffectiveTier(now, sub), Capabilities: caps}
}

func BuildRouteDTO(d session.Decision) RouteDTO {
	return RouteDTO{State: d.State, Redirect: d.Route}
}

// BuildPanels locks every panel when the subscription lookup failed.
func BuildPanels(now time.Time, d session.Decision) []access.PanelView {
	if d.LookupFailed {
		return access.LockedDashboard()
	}
	return access.GateDashboard(now, d.Subscription)
}
