// Package onboarding serves the creator profile collected after signup.
package onboarding

import (
	"context"
	"net/http"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository"
	"creator-app/internal/service/session"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Router interface {
	Sync(ctx context.Context, u *users.User) (session.Decision, error)
}

type Handler struct {
	profiles repository.ProfileRepository
	router   Router
	validate *validator.Validate
	log      zerolog.Logger
}

func NewHandler(profiles repository.ProfileRepository, router Router, v *validator.Validate, log zerolog.Logger) *Handler {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Handler{profiles: profiles, router: router, validate: v, log: log}
}

// profileInput is a partial update: nil fields are left alone.
type profileInput struct {
	DisplayName    *string `json:"display_name" validate:"omitnil,max=80"`
	Niche          *string `json:"niche" validate:"omitnil,max=80"`
	Tone           *string `json:"tone" validate:"omitnil,max=40"`
	ContentFormat  *string `json:"content_format" validate:"omitnil,max=40"`
	FameGoal       *string `json:"fame_goal" validate:"omitnil,max=200"`
	FollowerBucket *string `json:"follower_bucket" validate:"omitnil,max=40"`
}

func (in profileInput) fields() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("display_name", in.DisplayName)
	set("niche", in.Niche)
	set("tone", in.Tone)
	set("content_format", in.ContentFormat)
	set("fame_goal", in.FameGoal)
	set("follower_bucket", in.FollowerBucket)
	return out
}

func (h *Handler) load(c *gin.Context, userID uuid.UUID) (*users.Profile, bool) {
	ctx := c.Request.Context()
	if err := h.profiles.Ensure(ctx, userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("ensure profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return nil, false
	}
	p, err := h.profiles.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("load profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return nil, false
	}
	return p, true
}

func currentUser(c *gin.Context) (*users.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "redirect": "/signin"})
		return nil, false
	}
	return u, true
}

// GET /onboarding
func (h *Handler) GetProfile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	p, ok := h.load(c, u.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /onboarding
func (h *Handler) UpdateProfile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var in profileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.validate.Struct(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more fields are too long"})
		return
	}
	if _, ok := h.load(c, u.ID); !ok {
		return
	}
	if fields := in.fields(); len(fields) > 0 {
		if err := h.profiles.Update(c.Request.Context(), u.ID, fields); err != nil {
			h.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("update profile failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
			return
		}
	}
	p, ok := h.load(c, u.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /onboarding/complete
func (h *Handler) Complete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	if _, ok := h.load(c, u.ID); !ok {
		return
	}
	if err := h.profiles.Update(c.Request.Context(), u.ID, map[string]any{"onboarding_completed": true}); err != nil {
		h.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("complete onboarding failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	d, err := h.router.Sync(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": d.State, "redirect": d.Route})
}
