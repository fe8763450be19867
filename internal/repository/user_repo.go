package repository

import (
	"context"
	"fmt"

	"creator-app/internal/domain/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, u *users.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*users.User, error)
	Save(ctx context.Context, u *users.User) error
	BumpSessionVersion(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]users.User, error)
}

type ProfileRepository interface {
	// Ensure inserts an empty profile for userID unless one exists.
	Ensure(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*users.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, fields map[string]any) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *users.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, translate(err))
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).Where("google_sub = ?", sub).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) Save(ctx context.Context, u *users.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) BumpSessionVersion(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", id).
		UpdateColumn("session_version", gorm.Expr("session_version + 1")).Error)
}

func (r *userRepo) List(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Ensure(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&users.Profile{UserID: userID}).Error
	if err != nil {
		return fmt.Errorf("upsert profile for user %s: %w", userID, err)
	}
	return nil
}

func (r *profileRepo) Get(ctx context.Context, userID uuid.UUID) (*users.Profile, error) {
	var p users.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&users.Profile{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update profile for user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
