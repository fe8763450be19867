package middleware

import (
	"errors"
	"net/http"
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/repository"

	"github.com/gin-gonic/gin"
)

const subscriptionKey = "subscription"

// RequireActiveSubscription lets through users whose subscription currently
// grants a tier. It must run after AuthMiddleware.
func RequireActiveSubscription(subs repository.SubscriptionRepository, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "redirect": "/signin"})
			return
		}

		sub, err := subs.GetForUser(c.Request.Context(), u.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Could not verify subscription"})
			return
		}
		if !sub.IsActive(now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":    "Subscription not found or expired",
				"redirect": "/pricing",
			})
			return
		}

		c.Set(subscriptionKey, sub)
		c.Next()
	}
}

func ActiveSubscription(c *gin.Context) *billing.Subscription {
	v, ok := c.Get(subscriptionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*billing.Subscription)
	return s
}
