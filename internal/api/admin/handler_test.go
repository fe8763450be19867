package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository/repotest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seed(store *repotest.Store) (creator, lapsed, free uuid.UUID) {
	creator, lapsed, free = uuid.New(), uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{creator, lapsed, free} {
		store.Users[id] = &users.User{ID: id, Email: id.String() + "@example.com", Role: users.RoleUser}
	}
	store.Subscriptions[creator] = &billing.Subscription{UserID: creator, PlanName: "creator", Status: billing.StatusActive}
	store.Subscriptions[lapsed] = &billing.Subscription{UserID: lapsed, PlanName: "superstar", Status: billing.StatusPastDue}
	return
}

func router(store *repotest.Store) *gin.Engine {
	h := NewHandler(store.UsersRepo(), store.SubscriptionsRepo(), store.CheckoutRepo(), zerolog.New(io.Discard))
	h.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	r := gin.New()
	r.GET("/admin/users", h.ListAllUsers)
	r.GET("/admin/stats", h.GetAdminStats)
	r.GET("/admin/users/:id", h.GetUserDetails)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListAllUsersShowsEffectiveTier(t *testing.T) {
	store := repotest.New()
	creator, lapsed, free := seed(store)

	w := get(router(store), "/admin/users")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []AdminUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	tiers := map[uuid.UUID]plans.ID{}
	for _, r := range rows {
		tiers[r.ID] = r.Tier
	}
	assert.Equal(t, plans.Creator, tiers[creator])
	assert.Equal(t, plans.None, tiers[lapsed])
	assert.Equal(t, plans.None, tiers[free])
}

func TestGetAdminStats(t *testing.T) {
	store := repotest.New()
	seed(store)

	w := get(router(store), "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats AdminStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActiveSubscriptions)
	assert.Equal(t, map[string]int{"creator": 1, "No Plan": 2}, stats.UsersPerTier)
	assert.Equal(t, map[string]int{billing.StatusActive: 1, billing.StatusPastDue: 1}, stats.Statuses)
}

func TestGetUserDetails(t *testing.T) {
	store := repotest.New()
	creator, _, _ := seed(store)
	r := router(store)

	assert.Equal(t, http.StatusBadRequest, get(r, "/admin/users/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/admin/users/"+uuid.NewString()).Code)

	w := get(r, "/admin/users/"+creator.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tier":"creator"`)
}
