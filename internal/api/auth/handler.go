package auth

import (
	"context"
	"errors"
	"net/http"

	"creator-app/internal/app/http/middleware"
	"creator-app/internal/domain/users"
	"creator-app/internal/service/identity"
	"creator-app/internal/service/session"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Identity is the subset of the identity service these handlers call.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (*users.User, error)
	ResendConfirmation(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, token string) (*users.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (identity.Session, error)
	SignInWithGoogle(ctx context.Context, gc identity.GoogleClaims) (identity.Session, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	ResetPasswordForEmail(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

type Router interface {
	Sync(ctx context.Context, u *users.User) (session.Decision, error)
}

type Handler struct {
	identity Identity
	router   Router
	validate *validator.Validate
	google   *Google
	log      zerolog.Logger
}

// NewHandler wires the auth endpoints. google may be nil when Google sign-in
// is not configured.
func NewHandler(id Identity, router Router, v *validator.Validate, google *Google, log zerolog.Logger) *Handler {
	if v == nil {
		v = NewValidator()
	}
	return &Handler{identity: id, router: router, validate: v, google: google, log: log}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, identity.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrNoPassword):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("auth request failed")
	}
	c.JSON(status, gin.H{"error": Message(err)})
}

// bind decodes and validates the JSON body, answering 400 itself on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ValidationMessage(err)})
		return false
	}
	return true
}

type UserView struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AuthProvider   string    `json:"auth_provider"`
	EmailConfirmed bool      `json:"email_confirmed"`
}

func UserDTO(u *users.User) UserView {
	return UserView{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		AuthProvider:   u.AuthProvider,
		EmailConfirmed: u.EmailConfirmed,
	}
}

// POST /signup
func (h *Handler) SignUp(c *gin.Context) {
	var in signUpInput
	if !h.bind(c, &in) {
		return
	}
	if _, err := h.identity.SignUp(c.Request.Context(), in.Email, in.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created. Please check your email to confirm your address."})
}

// POST /confirm/resend
func (h *Handler) ResendConfirmation(c *gin.Context) {
	var in emailInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.identity.ResendConfirmation(c.Request.Context(), in.Email); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If your account needs confirmation, a new link is on its way."})
}

// GET /confirm?token=
func (h *Handler) ConfirmEmail(c *gin.Context) {
	if _, err := h.identity.ConfirmEmail(c.Request.Context(), c.Query("token")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed. You can now sign in.", "redirect": "/signin"})
}

// POST /signin
func (h *Handler) SignIn(c *gin.Context) {
	var in signInInput
	if !h.bind(c, &in) {
		return
	}
	sess, err := h.identity.SignInWithPassword(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, sess)
}

// respondSession returns the token along with where the user should land.
func (h *Handler) respondSession(c *gin.Context, sess identity.Session) {
	decision, err := h.router.Sync(c.Request.Context(), sess.User)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    sess.Token,
		"user":     UserDTO(sess.User),
		"state":    decision.State,
		"redirect": decision.Route,
	})
}

// POST /signout
func (h *Handler) SignOut(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.identity.SignOut(c.Request.Context(), u.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "redirect": "/signin"})
}

// POST /password/reset-request
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var in emailInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.identity.ResetPasswordForEmail(c.Request.Context(), in.Email); err != nil {
		h.log.Error().Err(err).Msg("password reset request failed")
	}
	// Same answer whether or not the address exists.
	c.JSON(http.StatusOK, gin.H{"message": "If your email exists, you'll receive a reset link."})
}

// POST /password/reset
func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.identity.ResetPassword(c.Request.Context(), in.Token, in.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful", "redirect": "/signin"})
}

// POST /password/change
func (h *Handler) ChangePassword(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var in changePasswordInput
	if !h.bind(c, &in) {
		return
	}
	if err := h.identity.UpdatePassword(c.Request.Context(), u.ID, in.OldPassword, in.NewPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
