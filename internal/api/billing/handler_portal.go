package billing

import (
	"net/http"

	"creator-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /billing-portal
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	sub := middleware.ActiveSubscription(c)
	if sub == nil || sub.ProviderCustomerID == nil || *sub.ProviderCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No billing account yet (subscribe first)"})
		return
	}

	url, err := h.portal.PortalURL(c.Request.Context(), *sub.ProviderCustomerID, h.siteURL+"/dashboard")
	if err != nil {
		h.log.Error().Err(err).Str("user_id", sub.UserID.String()).Msg("billing portal failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not open the billing portal. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
