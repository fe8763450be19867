package admin

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"creator-app/internal/domain/access"
	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AdminUser struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	AuthProvider   string     `json:"auth_provider"`
	EmailConfirmed bool       `json:"email_confirmed"`
	PlanName       string     `json:"plan_name,omitempty"`
	Status         string     `json:"status,omitempty"`
	PeriodEnd      *time.Time `json:"current_period_end,omitempty"`
	Tier           plans.ID   `json:"tier"`
	CreatedAt      time.Time  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers          int            `json:"total_users"`
	ActiveSubscriptions int            `json:"active_subscriptions"`
	UsersPerTier        map[string]int `json:"users_per_tier"`
	Statuses            map[string]int `json:"subscriptions_per_status"`
}

type Handler struct {
	users    repository.UserRepository
	subs     repository.SubscriptionRepository
	sessions repository.CheckoutRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandler(u repository.UserRepository, s repository.SubscriptionRepository, cs repository.CheckoutRepository, log zerolog.Logger) *Handler {
	return &Handler{users: u, subs: s, sessions: cs, log: log, now: time.Now}
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the admin dashboard"})
}

func (h *Handler) subscriptionsByUser(c *gin.Context) (map[uuid.UUID]*billing.Subscription, bool) {
	subs, err := h.subs.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("admin: list subscriptions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return nil, false
	}
	out := make(map[uuid.UUID]*billing.Subscription, len(subs))
	for i := range subs {
		out[subs[i].UserID] = &subs[i]
	}
	return out, true
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("admin: list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	subs, ok := h.subscriptionsByUser(c)
	if !ok {
		return
	}

	now := h.now()
	result := make([]AdminUser, 0, len(list))
	for _, u := range list {
		row := AdminUser{
			ID:             u.ID,
			Email:          u.Email,
			Role:           u.Role,
			AuthProvider:   u.AuthProvider,
			EmailConfirmed: u.EmailConfirmed,
			CreatedAt:      u.CreatedAt,
		}
		if sub := subs[u.ID]; sub != nil {
			row.PlanName = sub.PlanName
			row.Status = sub.Status
			row.PeriodEnd = sub.CurrentPeriodEnd
			row.Tier = access.EffectiveTier(now, sub)
		}
		result = append(result, row)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("admin: list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	subs, ok := h.subscriptionsByUser(c)
	if !ok {
		return
	}

	now := h.now()
	stats := AdminStats{
		TotalUsers:   len(list),
		UsersPerTier: map[string]int{},
		Statuses:     map[string]int{},
	}
	for _, u := range list {
		tier := access.EffectiveTier(now, subs[u.ID])
		name := "No Plan"
		if tier != plans.None {
			name = string(tier)
			stats.ActiveSubscriptions++
		}
		stats.UsersPerTier[name]++
	}
	for _, sub := range subs {
		stats.Statuses[billing.NormalizeStatus(sub.Status)]++
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetUserDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	sub, err := h.subs.GetForUser(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", id.String()).Msg("admin: load subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	sessions, err := h.sessions.ListForUser(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", id.String()).Msg("admin: load checkout sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checkout sessions"})
		return
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })

	c.JSON(http.StatusOK, gin.H{
		"user": AdminUser{
			ID:             user.ID,
			Email:          user.Email,
			Role:           user.Role,
			AuthProvider:   user.AuthProvider,
			EmailConfirmed: user.EmailConfirmed,
			Tier:           access.EffectiveTier(h.now(), sub),
			CreatedAt:      user.CreatedAt,
		},
		"subscription":      sub,
		"checkout_sessions": sessions,
	})
}
