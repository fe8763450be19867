package users

import (
	"context"
	"net/http"
	"time"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/users"
	"creator-app/internal/service/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Router interface {
	Sync(ctx context.Context, u *users.User) (session.Decision, error)
}

type Handler struct {
	router Router
	log    zerolog.Logger
	now    func() time.Time
}

func NewHandler(router Router, log zerolog.Logger) *Handler {
	return &Handler{router: router, log: log, now: time.Now}
}

func (h *Handler) decide(c *gin.Context) (*users.User, session.Decision, bool) {
	u := middleware.CurrentUser(c)
	d, err := h.router.Sync(c.Request.Context(), u)
	if err != nil {
		h.log.Error().Err(err).Msg("session sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return nil, session.Decision{}, false
	}
	if d.State == session.NeedsAuth {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "redirect": d.Route})
		return nil, d, false
	}
	return u, d, true
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	u, d, ok := h.decide(c)
	if !ok {
		return
	}
	now := h.now()
	c.JSON(http.StatusOK, MeResponse{
		User:    BuildUserDTO(u),
		Profile: d.Profile,
		Billing: BillingDTO{
			Plan:         BuildPlanDTO(now, d.Subscription),
			Subscription: BuildSubscriptionDTO(now, d.Subscription),
		},
		Access: BuildAccessDTO(now, d.Subscription),
		Route:  BuildRouteDTO(d),
	})
}

// GET /session/route
func (h *Handler) SessionRoute(c *gin.Context) {
	_, d, ok := h.decide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, BuildRouteDTO(d))
}

// GET /dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	_, d, ok := h.decide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Route:  BuildRouteDTO(d),
		Tier:   d.Tier,
		Panels: BuildPanels(h.now(), d),
	})
}
