package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	CheckoutPending   = "pending"
	CheckoutCompleted = "completed"
	CheckoutExpired   = "expired"
)

type CheckoutSession struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProviderSessionID *string   `gorm:"column:provider_session_id;uniqueIndex" json:"-"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanName          string    `gorm:"not null" json:"plan_name"`
	BillingCycle      string    `gorm:"not null" json:"billing_cycle"`
	Amount            int64     `json:"amount"` // minor units
	Status            string    `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WebhookEvent records provider event ids that were already applied.
type WebhookEvent struct {
	ID        string `gorm:"primaryKey"`
	Type      string
	CreatedAt time.Time
}
