package routes

import (
	"net/http"
	"time"

	adminapi "creator-app/internal/api/admin"
	authapi "creator-app/internal/api/auth"
	"creator-app/internal/api/billing"
	"creator-app/internal/api/onboarding"
	"creator-app/internal/api/plans"
	stripewebhooks "creator-app/internal/api/stripewebhook"
	usersapi "creator-app/internal/api/users"
	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository"

	"github.com/gin-gonic/gin"
)

// Deps carries every handler the router mounts. All fields are required.
type Deps struct {
	Authenticator middleware.Authenticator
	Subscriptions repository.SubscriptionRepository
	Now           func() time.Time

	Auth       *authapi.Handler
	Users      *usersapi.Handler
	Onboarding *onboarding.Handler
	Plans      *plans.Handler
	Billing    *billing.Handler
	Webhook    *stripewebhooks.Handler
	Admin      *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// The webhook body must reach signature verification untouched.
	r.POST("/webhook", d.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/signup", d.Auth.SignUp)
	public.POST("/signin", d.Auth.SignIn)
	public.GET("/confirm", d.Auth.ConfirmEmail)
	public.POST("/confirm/resend", d.Auth.ResendConfirmation)
	public.POST("/password/reset-request", d.Auth.RequestPasswordReset)
	public.POST("/password/reset", d.Auth.ResetPassword)

	public.GET("/auth/google", d.Auth.GoogleStart)
	public.GET("/auth/google/callback", d.Auth.GoogleCallback)

	// Checkout rejects anonymous callers itself, with the sign-in redirect in
	// its usual error body.
	optional := public.Group("/")
	optional.Use(middleware.OptionalAuth(d.Authenticator))
	optional.GET("/plans", d.Plans.ListPlans)
	optional.POST("/checkout", d.Billing.CreateCheckout)

	// Authenticated
	auth := public.Group("/")
	auth.Use(middleware.AuthMiddleware(d.Authenticator))
	auth.POST("/signout", d.Auth.SignOut)
	auth.POST("/password/change", d.Auth.ChangePassword)

	auth.GET("/me", d.Users.GetCurrentUser)
	auth.GET("/session/route", d.Users.SessionRoute)
	auth.GET("/dashboard", d.Users.Dashboard)

	auth.GET("/onboarding", d.Onboarding.GetProfile)
	auth.PUT("/onboarding", d.Onboarding.UpdateProfile)
	auth.POST("/onboarding/complete", d.Onboarding.Complete)

	auth.GET("/checkout-sessions", d.Billing.ListCheckoutSessions)

	// Subscribed users
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActiveSubscription(d.Subscriptions, d.Now))
	subscribed.POST("/billing-portal", d.Billing.CreateBillingPortal)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.Authenticator), middleware.RequireRole(users.RoleAdmin))
	admin.GET("/dashboard", d.Admin.AdminDashboard)
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.GET("/users/:id", d.Admin.GetUserDetails)
	admin.GET("/stats", d.Admin.GetAdminStats)
}
