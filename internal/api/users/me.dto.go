package users

import (
	"time"

	"creator-app/internal/domain/access"
	"creator-app/internal/domain/plans"
	"creator-app/internal/domain/users"
	"creator-app/internal/service/session"

	"github.com/google/uuid"
)

type MeResponse struct {
	User    UserDTO        `json:"user"`
	Profile *users.Profile `json:"profile"`
	Billing BillingDTO     `json:"billing"`
	Access  AccessDTO      `json:"access"`
	Route   RouteDTO       `json:"route"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AuthProvider   string    `json:"auth_provider"`
	EmailConfirmed bool      `json:"email_confirmed"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan         *PlanDTO         `json:"plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type PlanDTO struct {
	Key          plans.ID           `json:"key"`
	Name         string             `json:"name"`
	BillingCycle plans.BillingCycle `json:"billing_cycle"`
	Price        int64              `json:"price"`
}

type SubscriptionDTO struct {
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	Active           bool       `json:"active"`
	CanManage        bool       `json:"can_manage"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	Tier         plans.ID         `json:"tier"`
	Capabilities []access.Feature `json:"capabilities"`
}

type RouteDTO struct {
	State    session.State `json:"state"`
	Redirect string        `json:"redirect"`
}

type DashboardResponse struct {
	Route  RouteDTO           `json:"route"`
	Tier   plans.ID           `json:"tier"`
	Panels []access.PanelView `json:"panels"`
}
