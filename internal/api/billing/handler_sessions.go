package billing

import (
	"net/http"
	"sort"
	"time"

	"creator-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type checkoutSessionView struct {
	ID           uuid.UUID `json:"id"`
	Plan         string    `json:"plan"`
	BillingCycle string    `json:"billing_cycle"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GET /checkout-sessions
func (h *Handler) ListCheckoutSessions(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	rows, err := h.sessions.ListForUser(c.Request.Context(), u.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("list checkout sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load checkout history"})
		return
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	out := make([]checkoutSessionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, checkoutSessionView{
			ID:           r.ID,
			Plan:         r.PlanName,
			BillingCycle: r.BillingCycle,
			Amount:       r.Amount,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}
