package repository

import (
	"context"
	"fmt"

	"creator-app/internal/domain/billing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRepository interface {
	Create(ctx context.Context, s *billing.CheckoutSession) error
	SetStatusByProviderID(ctx context.Context, providerSessionID, status string) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]billing.CheckoutSession, error)
}

type WebhookEventRepository interface {
	// MarkProcessed records id and reports whether this is its first delivery.
	MarkProcessed(ctx context.Context, id, eventType string) (bool, error)
	// Forget removes id so that a failed event can be redelivered.
	Forget(ctx context.Context, id string) error
}

type checkoutRepo struct {
	db *gorm.DB
}

func NewCheckoutRepo(db *gorm.DB) CheckoutRepository {
	return &checkoutRepo{db: db}
}

func (r *checkoutRepo) Create(ctx context.Context, s *billing.CheckoutSession) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("record checkout session: %w", translate(err))
	}
	return nil
}

func (r *checkoutRepo) SetStatusByProviderID(ctx context.Context, providerSessionID, status string) error {
	res := r.db.WithContext(ctx).
		Model(&billing.CheckoutSession{}).
		Where("provider_session_id = ?", providerSessionID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checkoutRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]billing.CheckoutSession, error) {
	var out []billing.CheckoutSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type webhookEventRepo struct {
	db *gorm.DB
}

func NewWebhookEventRepo(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepo{db: db}
}

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, id, eventType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&billing.WebhookEvent{ID: id, Type: eventType})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *webhookEventRepo) Forget(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&billing.WebhookEvent{}).Error
}
