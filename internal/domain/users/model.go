package users

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string    `gorm:"not null;uniqueIndex:idx_users_email"`
	Password       *string   `gorm:""`
	AuthProvider   string    `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub      *string   `gorm:"uniqueIndex:idx_users_google_sub"`
	Role           string    `gorm:"not null;default:'user'"`
	EmailConfirmed bool      `gorm:"not null;default:false"`
	// Bumped on sign-out; tokens carrying an older version are rejected.
	SessionVersion int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the onboarding profile. One row per user, created on first sign-in.
type Profile struct {
	UserID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName         string    `json:"display_name"`
	Niche               string    `json:"niche"`
	Tone                string    `json:"tone"`
	ContentFormat       string    `json:"content_format"`
	FameGoal            string    `json:"fame_goal"`
	FollowerBucket      string    `json:"follower_bucket"`
	OnboardingCompleted bool      `gorm:"not null;default:false" json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }
