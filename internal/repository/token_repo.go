package repository

import (
	"context"

	"creator-app/internal/domain/users"

	"gorm.io/gorm"
)

type TokenRepository interface {
	// Replace deletes the user's tokens of t.Type and stores t.
	Replace(ctx context.Context, t *users.VerificationToken) error
	Find(ctx context.Context, token, tokenType string) (*users.VerificationToken, error)
	Delete(ctx context.Context, id uint) error
}

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Replace(ctx context.Context, t *users.VerificationToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", t.UserID, t.Type).
			Delete(&users.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *tokenRepo) Find(ctx context.Context, token, tokenType string) (*users.VerificationToken, error) {
	var t users.VerificationToken
	if err := r.db.WithContext(ctx).
		Where("token = ? AND type = ?", token, tokenType).
		First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tokenRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&users.VerificationToken{}, id).Error
}
