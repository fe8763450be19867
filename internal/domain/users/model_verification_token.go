package users

import (
	"time"

	"github.com/google/uuid"
)

const (
	TokenEmailConfirmation = "email_confirmation"
	TokenPasswordReset     = "password_reset"
)

type VerificationToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"uniqueIndex"`
	Type      string    `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t VerificationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
