package billing

import (
	"time"

	"creator-app/internal/domain/plans"

	"github.com/google/uuid"
)

// Subscription mirrors the billing provider's subscription for one user.
// user_id is unique: a user has at most one row, rewritten by upsert.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"-"`
	UserID                 uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_id" json:"user_id"`
	PlanName               string     `gorm:"not null" json:"plan_name"`
	BillingCycle           string     `gorm:"not null;default:'monthly'" json:"billing_cycle"`
	Status                 string     `gorm:"not null;index" json:"status"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end"`
	ProviderCustomerID     *string    `gorm:"column:provider_customer_id" json:"-"`
	ProviderSubscriptionID *string    `gorm:"column:provider_subscription_id;uniqueIndex:idx_subscriptions_provider_id" json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsActive reports whether the row currently grants its tier. Canceled
// subscriptions keep access until the paid-through period ends.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	switch NormalizeStatus(s.Status) {
	case StatusActive, StatusTrialing:
		return true
	case StatusCanceled:
		return s.CurrentPeriodEnd != nil && now.Before(*s.CurrentPeriodEnd)
	}
	return false
}

func (s *Subscription) Plan() plans.ID {
	if s == nil {
		return plans.None
	}
	return plans.ParseID(s.PlanName)
}

func (s *Subscription) Cycle() plans.BillingCycle {
	if s == nil {
		return plans.Monthly
	}
	if c, ok := plans.ParseCycle(s.BillingCycle); ok {
		return c
	}
	return plans.Monthly
}
