package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository/repotest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tokenAuth map[string]*users.User

func (a tokenAuth) CurrentUser(_ context.Context, tok string) (*users.User, error) {
	if u, ok := a[tok]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func whoami(c *gin.Context) {
	if u := CurrentUser(c); u != nil {
		c.String(http.StatusOK, u.Email)
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	maya := &users.User{ID: uuid.New(), Email: "maya@example.com", Role: users.RoleUser}
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokenAuth{"good": maya}), whoami)

	w := do(r, http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/signin"`)

	w = do(r, http.MethodGet, "/me", "bad", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", "good", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "maya@example.com", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	maya := &users.User{ID: uuid.New(), Email: "maya@example.com"}
	r := gin.New()
	r.GET("/plans", OptionalAuth(tokenAuth{"good": maya}), whoami)

	assert.Equal(t, "anonymous", do(r, http.MethodGet, "/plans", "", "").Body.String())
	assert.Equal(t, "anonymous", do(r, http.MethodGet, "/plans", "bad", "").Body.String())
	assert.Equal(t, "maya@example.com", do(r, http.MethodGet, "/plans", "good", "").Body.String())
}

func TestRequireRole(t *testing.T) {
	auth := tokenAuth{
		"user":  {ID: uuid.New(), Role: users.RoleUser},
		"admin": {ID: uuid.New(), Role: users.RoleAdmin},
	}
	r := gin.New()
	r.GET("/admin", AuthMiddleware(auth), RequireRole(users.RoleAdmin), whoami)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", "user", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", "admin", "").Code)
}

func TestRequireActiveSubscription(t *testing.T) {
	store := repotest.New()
	paid := &users.User{ID: uuid.New(), Email: "paid@example.com"}
	lapsed := &users.User{ID: uuid.New(), Email: "lapsed@example.com"}
	store.Subscriptions[paid.ID] = &billing.Subscription{UserID: paid.ID, PlanName: "creator", Status: billing.StatusActive}
	store.Subscriptions[lapsed.ID] = &billing.Subscription{UserID: lapsed.ID, PlanName: "creator", Status: billing.StatusPastDue}

	r := gin.New()
	r.POST("/portal",
		AuthMiddleware(tokenAuth{"paid": paid, "lapsed": lapsed, "none": {ID: uuid.New()}}),
		RequireActiveSubscription(store.SubscriptionsRepo(), time.Now),
		func(c *gin.Context) { c.String(http.StatusOK, ActiveSubscription(c).PlanName) },
	)

	w := do(r, http.MethodPost, "/portal", "paid", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "creator", w.Body.String())

	assert.Equal(t, http.StatusPaymentRequired, do(r, http.MethodPost, "/portal", "lapsed", "").Code)
	assert.Equal(t, http.StatusPaymentRequired, do(r, http.MethodPost, "/portal", "none", "").Code)

	store.SubscriptionErr = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodPost, "/portal", "paid", "").Code)
}

func TestSanitizeKeepsSecrets(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		var m map[string]string
		_ = json.Unmarshal(b, &m)
		c.String(http.StatusOK, m["display_name"]+"|"+m["password"])
	})

	w := do(r, http.MethodPost, "/echo", "", `{"display_name":"<b>Maya</b><script>x</script>","password":"<Secret1>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maya|<Secret1>", w.Body.String())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/echo", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/echo", "", "{nope").Code)
}

func echoFields(c *gin.Context) {
	b, _ := io.ReadAll(c.Request.Body)
	var m map[string]string
	_ = json.Unmarshal(b, &m)
	c.JSON(http.StatusOK, m)
}

func TestSanitizeLeavesReturnURLsIntact(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/checkout", echoFields)

	w := do(r, http.MethodPost, "/checkout", "", `{"plan":"influencer",`+
		`"success_url":"https://creator.app/dashboard?checkout=success&ref=pricing&reg=1",`+
		`"cancel_url":"https://creator.app/pricing?checkout=canceled&utm=x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "https://creator.app/dashboard?checkout=success&ref=pricing&reg=1", got["success_url"])
	assert.Equal(t, "https://creator.app/pricing?checkout=canceled&utm=x", got["cancel_url"])
	assert.Equal(t, "influencer", got["plan"])
}

func TestSanitizeKeepsPlainTextUnescaped(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.PUT("/onboarding", echoFields)

	w := do(r, http.MethodPut, "/onboarding", "", `{"display_name":"Tom & Jerry",`+
		`"niche":"Cats > Dogs","tone":"<i>witty</i> & warm","fame_goal":"&lt;script&gt;alert(1)&lt;/script&gt;go"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Tom & Jerry", got["display_name"])
	assert.Equal(t, "Cats > Dogs", got["niche"])
	assert.Equal(t, "witty & warm", got["tone"])
	assert.NotContains(t, got["fame_goal"], "<script")
	assert.Contains(t, got["fame_goal"], "go")
}

func TestRequestLoggerTagsRequests(t *testing.T) {
	var buf strings.Builder
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}
