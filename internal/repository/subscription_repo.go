package repository

import (
	"context"
	"fmt"

	"creator-app/internal/domain/billing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	// GetForUser returns the user's single subscription row in any status.
	GetForUser(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error)
	GetByProviderID(ctx context.Context, providerSubscriptionID string) (*billing.Subscription, error)
	// Upsert writes sub keyed by user id; a second call with the same user
	// rewrites the existing row.
	Upsert(ctx context.Context, sub *billing.Subscription) error
	List(ctx context.Context) ([]billing.Subscription, error)
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetForUser(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	var s billing.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *subscriptionRepo) GetByProviderID(ctx context.Context, id string) (*billing.Subscription, error) {
	var s billing.Subscription
	if err := r.db.WithContext(ctx).Where("provider_subscription_id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, sub *billing.Subscription) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_name",
				"billing_cycle",
				"status",
				"current_period_end",
				"provider_customer_id",
				"provider_subscription_id",
				"updated_at",
			}),
		}).
		Create(sub).Error
	if err != nil {
		return fmt.Errorf("upsert subscription for user %s: %w", sub.UserID, err)
	}
	return nil
}

func (r *subscriptionRepo) List(ctx context.Context) ([]billing.Subscription, error) {
	var out []billing.Subscription
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
