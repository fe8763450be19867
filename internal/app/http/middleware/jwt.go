package middleware

import (
	"context"
	"net/http"
	"strings"

	"creator-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// Authenticator resolves a bearer token to the signed-in user.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*users.User, error)
}

func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	tok := strings.TrimPrefix(h, "Bearer ")
	if h == "" || tok == h || strings.TrimSpace(tok) == "" {
		return "", false
	}
	return strings.TrimSpace(tok), true
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing", "redirect": "/signin"})
			return
		}
		u, err := auth.CurrentUser(c.Request.Context(), tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "redirect": "/signin"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := bearer(c); ok {
			if u, err := auth.CurrentUser(c.Request.Context(), tok); err == nil {
				c.Set(userKey, u)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware or OptionalAuth, or nil.
func CurrentUser(c *gin.Context) *users.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*users.User)
	return u
}

// SetUser is used by tests to stand in for AuthMiddleware.
func SetUser(c *gin.Context, u *users.User) {
	c.Set(userKey, u)
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
