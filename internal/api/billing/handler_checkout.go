package billing

import (
	"errors"
	"net/http"
	"strings"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/plans"
	"creator-app/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

var reasonStatus = map[checkout.Reason]int{
	checkout.ReasonUnauthenticated:          http.StatusUnauthorized,
	checkout.ReasonInvalidPlanConfiguration: http.StatusBadRequest,
	checkout.ReasonNotAnUpgrade:             http.StatusConflict,
	checkout.ReasonInFlight:                 http.StatusConflict,
	checkout.ReasonRateLimited:              http.StatusTooManyRequests,
	checkout.ReasonTransport:                http.StatusBadGateway,
	checkout.ReasonProvider:                 http.StatusBadGateway,
	checkout.ReasonNoRedirectURL:            http.StatusBadGateway,
}

type checkoutInput struct {
	Plan         string `json:"plan"`
	BillingCycle string `json:"billing_cycle"`
	SuccessURL   string `json:"success_url"`
	CancelURL    string `json:"cancel_url"`
}

// sameSite keeps caller supplied return URLs on our own site.
func (h *Handler) sameSite(u string) string {
	if u == "" || h.siteURL == "" {
		return ""
	}
	if u == h.siteURL || strings.HasPrefix(u, h.siteURL+"/") || strings.HasPrefix(u, h.siteURL+"?") {
		return u
	}
	return ""
}

// POST /checkout
func (h *Handler) CreateCheckout(c *gin.Context) {
	var in checkoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cycle, ok := plans.ParseCycle(in.BillingCycle)
	if !ok {
		cycle = plans.Monthly
		if in.BillingCycle != "" {
			cycle = plans.BillingCycle(in.BillingCycle)
		}
	}

	res, err := h.checkout.Start(c.Request.Context(), checkout.Request{
		User:       middleware.CurrentUser(c),
		Plan:       plans.ParseID(in.Plan),
		Cycle:      cycle,
		SuccessURL: h.sameSite(in.SuccessURL),
		CancelURL:  h.sameSite(in.CancelURL),
	})
	if err != nil {
		h.checkoutFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": res.URL, "session_id": res.SessionID})
}

func (h *Handler) checkoutFailed(c *gin.Context, err error) {
	var ce *checkout.Error
	if !errors.As(err, &ce) {
		h.log.Error().Err(err).Msg("checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": (&checkout.Error{Reason: checkout.ReasonProvider}).Message()})
		return
	}
	status, ok := reasonStatus[ce.Reason]
	if !ok {
		status = http.StatusBadGateway
	}
	body := gin.H{
		"error":     ce.Message(),
		"reason":    ce.Reason,
		"retryable": ce.Retryable(),
	}
	if ce.Reason == checkout.ReasonUnauthenticated {
		body["redirect"] = "/signin"
	}
	c.JSON(status, body)
}
