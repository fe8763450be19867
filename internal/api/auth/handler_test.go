package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/users"
	"creator-app/internal/service/identity"
	"creator-app/internal/service/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIdentity struct {
	calls   []string
	err     error
	session identity.Session
}

func (f *fakeIdentity) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeIdentity) SignUp(_ context.Context, email, _ string) (*users.User, error) {
	return &users.User{Email: email}, f.record("SignUp")
}
func (f *fakeIdentity) ResendConfirmation(context.Context, string) error {
	return f.record("ResendConfirmation")
}
func (f *fakeIdentity) ConfirmEmail(context.Context, string) (*users.User, error) {
	return &users.User{}, f.record("ConfirmEmail")
}
func (f *fakeIdentity) SignInWithPassword(context.Context, string, string) (identity.Session, error) {
	return f.session, f.record("SignInWithPassword")
}
func (f *fakeIdentity) SignInWithGoogle(context.Context, identity.GoogleClaims) (identity.Session, error) {
	return f.session, f.record("SignInWithGoogle")
}
func (f *fakeIdentity) SignOut(context.Context, uuid.UUID) error { return f.record("SignOut") }
func (f *fakeIdentity) ResetPasswordForEmail(context.Context, string) error {
	return f.record("ResetPasswordForEmail")
}
func (f *fakeIdentity) ResetPassword(context.Context, string, string) error {
	return f.record("ResetPassword")
}
func (f *fakeIdentity) UpdatePassword(context.Context, uuid.UUID, string, string) error {
	return f.record("UpdatePassword")
}

type fixedRouter session.State

func (r fixedRouter) Sync(context.Context, *users.User) (session.Decision, error) {
	s := session.State(r)
	return session.Decision{State: s, Route: s.Route()}, nil
}

func newRouter(id *fakeIdentity, signedIn *users.User) *gin.Engine {
	h := NewHandler(id, fixedRouter(session.NeedsSubscription), nil, nil, zerolog.New(io.Discard))
	r := gin.New()
	r.POST("/signup", h.SignUp)
	r.POST("/signin", h.SignIn)
	r.POST("/password/reset-request", h.RequestPasswordReset)
	r.POST("/password/reset", h.ResetPassword)
	r.GET("/auth/google", h.GoogleStart)
	authed := r.Group("/", func(c *gin.Context) { middleware.SetUser(c, signedIn) })
	authed.POST("/signout", h.SignOut)
	authed.POST("/password/change", h.ChangePassword)
	return r
}

func post(r *gin.Engine, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestSignUpRejectsWeakPasswordBeforeIdentityCall(t *testing.T) {
	id := &fakeIdentity{}
	w, out := post(newRouter(id, nil), "/signup",
		`{"email":"maya@example.com","password":"abc12345","confirm_password":"abc12345"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, WeakPasswordMessage, out["error"])
	assert.Empty(t, id.calls)
}

func TestSignUpValidation(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"mismatch": {`{"email":"maya@example.com","password":"Secret123","confirm_password":"Secret124"}`, "Passwords do not match"},
		"email":    {`{"email":"maya","password":"Secret123","confirm_password":"Secret123"}`, "Please enter a valid email address"},
		"short":    {`{"email":"maya@example.com","password":"Ab1","confirm_password":"Ab1"}`, "Password must be at least 8 characters"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			id := &fakeIdentity{}
			w, out := post(newRouter(id, nil), "/signup", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, out["error"])
			assert.Empty(t, id.calls)
		})
	}
}

func TestSignUp(t *testing.T) {
	id := &fakeIdentity{}
	w, _ := post(newRouter(id, nil), "/signup",
		`{"email":"maya@example.com","password":"Secret123","confirm_password":"Secret123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"SignUp"}, id.calls)

	id = &fakeIdentity{err: identity.ErrAlreadyRegistered}
	w, out := post(newRouter(id, nil), "/signup",
		`{"email":"maya@example.com","password":"Secret123","confirm_password":"Secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, Message(identity.ErrAlreadyRegistered), out["error"])
}

func TestSignInReturnsRoute(t *testing.T) {
	u := &users.User{ID: uuid.New(), Email: "maya@example.com", Role: users.RoleUser}
	id := &fakeIdentity{session: identity.Session{Token: "jwt", User: u}}

	w, out := post(newRouter(id, nil), "/signin", `{"email":"maya@example.com","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jwt", out["token"])
	assert.Equal(t, "/pricing", out["redirect"])
	assert.Equal(t, string(session.NeedsSubscription), out["state"])
}

func TestSignInFailures(t *testing.T) {
	cases := map[error]int{
		identity.ErrInvalidCredentials: http.StatusUnauthorized,
		identity.ErrEmailNotConfirmed:  http.StatusForbidden,
		identity.ErrRateLimited:        http.StatusTooManyRequests,
		errors.New("db exploded"):      http.StatusInternalServerError,
	}
	for err, status := range cases {
		w, out := post(newRouter(&fakeIdentity{err: err}, nil), "/signin", `{"email":"maya@example.com","password":"x"}`)
		assert.Equal(t, status, w.Code, err.Error())
		assert.Equal(t, Message(err), out["error"])
		assert.NotContains(t, out["error"], "db exploded")
	}
}

func TestRequestPasswordResetNeverLeaks(t *testing.T) {
	w, out := post(newRouter(&fakeIdentity{err: errors.New("smtp down")}, nil), "/password/reset-request", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out["message"], "If your email exists")
}

func TestResetPasswordValidatesStrength(t *testing.T) {
	id := &fakeIdentity{}
	w, out := post(newRouter(id, nil), "/password/reset", `{"token":"t","new_password":"abc12345"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, WeakPasswordMessage, out["error"])
	assert.Empty(t, id.calls)
}

func TestChangePassword(t *testing.T) {
	u := &users.User{ID: uuid.New()}

	w, _ := post(newRouter(&fakeIdentity{}, u), "/password/change", `{"old_password":"Secret123","new_password":"NewSecret1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, out := post(newRouter(&fakeIdentity{err: identity.ErrInvalidCredentials}, u), "/password/change", `{"old_password":"x","new_password":"NewSecret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Old password is incorrect", out["error"])

	w, _ = post(newRouter(&fakeIdentity{}, nil), "/password/change", `{"new_password":"NewSecret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOut(t *testing.T) {
	id := &fakeIdentity{}
	w, out := post(newRouter(id, &users.User{ID: uuid.New()}), "/signout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/signin", out["redirect"])
	assert.Equal(t, []string{"SignOut"}, id.calls)
}

func TestGoogleDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	w := httptest.NewRecorder()
	newRouter(&fakeIdentity{}, nil).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoogleStartSetsState(t *testing.T) {
	h := NewHandler(&fakeIdentity{}, fixedRouter(session.Dashboard), nil,
		NewGoogle("client-id", "secret", "https://api.test/auth/google/callback", "", false), zerolog.New(io.Discard))
	r := gin.New()
	r.GET("/auth/google", h.GoogleStart)
	r.GET("/auth/google/callback", h.GoogleCallback)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "accounts.google.com")
	assert.Contains(t, w.Header().Get("Set-Cookie"), stateCookie+"=")

	// A callback whose state does not match the cookie is refused before any exchange.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=c", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
