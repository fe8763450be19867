package plans

import (
	"errors"
	"net/http"
	"time"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/plans"
	"creator-app/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PriceLookup reports whether a plan/cycle pair can be purchased.
type PriceLookup interface {
	Lookup(plan plans.ID, cycle plans.BillingCycle) (string, bool)
}

type Handler struct {
	subs   repository.SubscriptionRepository
	prices PriceLookup
	log    zerolog.Logger
	now    func() time.Time
}

func NewHandler(subs repository.SubscriptionRepository, prices PriceLookup, log zerolog.Logger) *Handler {
	return &Handler{subs: subs, prices: prices, log: log, now: time.Now}
}

type optionView struct {
	plans.Option
	// Available is false when no price is configured for the pair.
	Available bool `json:"available"`
}

type listResponse struct {
	BillingCycle plans.BillingCycle `json:"billing_cycle"`
	CurrentPlan  plans.ID           `json:"current_plan"`
	CurrentCycle plans.BillingCycle `json:"current_cycle,omitempty"`
	Options      []optionView       `json:"options"`
}

// GET /plans?cycle=monthly|yearly
func (h *Handler) ListPlans(c *gin.Context) {
	cycle, ok := plans.ParseCycle(c.DefaultQuery("cycle", string(plans.Monthly)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cycle must be monthly or yearly"})
		return
	}

	resp := listResponse{BillingCycle: cycle}
	current, currentCycle := "", plans.Monthly
	if u := middleware.CurrentUser(c); u != nil {
		sub, err := h.subs.GetForUser(c.Request.Context(), u.ID)
		switch {
		case err == nil && sub.IsActive(h.now()):
			current, currentCycle = sub.PlanName, sub.Cycle()
			resp.CurrentPlan, resp.CurrentCycle = sub.Plan(), currentCycle
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			// Show every plan as purchasable rather than hide the page.
			h.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("subscription lookup failed for pricing")
		}
	}

	for _, opt := range plans.Options(current, currentCycle, cycle) {
		_, priced := h.prices.Lookup(opt.Plan.ID, cycle)
		opt.CanBuy = opt.CanBuy && priced
		resp.Options = append(resp.Options, optionView{Option: opt, Available: priced})
	}
	c.JSON(http.StatusOK, resp)
}
