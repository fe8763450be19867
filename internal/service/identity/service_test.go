package identity

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"creator-app/internal/domain/users"
	"creator-app/internal/infra/mailer"
	"creator-app/internal/repository/repotest"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, m mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

type fixture struct {
	store *repotest.Store
	mail  *outbox
	svc   *Service
	now   time.Time
}

func newFixture(t *testing.T, perMinute int) *fixture {
	t.Helper()
	f := &fixture{
		store: repotest.New(),
		mail:  &outbox{},
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(Options{
		Users:           f.store.UsersRepo(),
		Tokens:          f.store.TokensRepo(),
		Mailer:          f.mail,
		Secret:          "test-secret",
		SiteURL:         "https://creator.test",
		SignInPerMinute: perMinute,
		BcryptCost:      bcrypt.MinCost,
		Logger:          zerolog.New(io.Discard),
		Now:             func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) tokenOf(kind string) string {
	for _, t := range f.store.Tokens {
		if t.Type == kind {
			return t.Token
		}
	}
	return ""
}

func (f *fixture) signUpConfirmed(t *testing.T, email, password string) *users.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, email, password)
	require.NoError(t, err)
	u, err := f.svc.ConfirmEmail(ctx, f.tokenOf(users.TokenEmailConfirmation))
	require.NoError(t, err)
	return u
}

func TestSignUpSendsConfirmation(t *testing.T) {
	f := newFixture(t, 0)

	u, err := f.svc.SignUp(context.Background(), "  Maya@Example.com ", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", u.Email)
	assert.False(t, u.EmailConfirmed)
	assert.Equal(t, users.RoleUser, u.Role)
	require.NotNil(t, u.Password)
	assert.NotEqual(t, "Secret123", *u.Password)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "maya@example.com", f.mail.sent[0].To)
	assert.Contains(t, f.mail.sent[0].Text, f.tokenOf(users.TokenEmailConfirmation))
}

func TestSignUpDuplicate(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.svc.SignUp(context.Background(), "maya@example.com", "Secret123")
	require.NoError(t, err)

	_, err = f.svc.SignUp(context.Background(), "MAYA@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestSignInRequiresConfirmation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)

	_, err = f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	_, err = f.svc.ConfirmEmail(ctx, f.tokenOf(users.TokenEmailConfirmation))
	require.NoError(t, err)

	sess, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	u, err := f.svc.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)
}

func TestConfirmTokenIsSingleUse(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)
	tok := f.tokenOf(users.TokenEmailConfirmation)

	_, err = f.svc.ConfirmEmail(ctx, tok)
	require.NoError(t, err)
	_, err = f.svc.ConfirmEmail(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInInvalidCredentials(t *testing.T) {
	f := newFixture(t, 0)
	f.signUpConfirmed(t, "maya@example.com", "Secret123")

	_, err := f.svc.SignInWithPassword(context.Background(), "maya@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignInWithPassword(context.Background(), "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInRateLimited(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := f.svc.SignInWithPassword(ctx, "Maya@example.com", "wrong")
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other addresses have their own bucket.
	_, err = f.svc.SignInWithPassword(ctx, "other@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutInvalidatesTokens(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.signUpConfirmed(t, "maya@example.com", "Secret123")
	sess, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(ctx, sess.User.ID))

	_, err = f.svc.CurrentUser(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserRejectsExpiredAndForeignTokens(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.signUpConfirmed(t, "maya@example.com", "Secret123")
	sess, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)

	f.now = f.now.Add(25 * time.Hour)
	_, err = f.svc.CurrentUser(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.CurrentUser(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPasswordForUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, f.svc.ResetPasswordForEmail(context.Background(), "ghost@example.com"))
	assert.Empty(t, f.mail.sent)
}

func TestResetPasswordFlow(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.signUpConfirmed(t, "maya@example.com", "Secret123")
	old, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetPasswordForEmail(ctx, "maya@example.com"))
	tok := f.tokenOf(users.TokenPasswordReset)
	require.NotEmpty(t, tok)

	require.NoError(t, f.svc.ResetPassword(ctx, tok, "NewSecret1"))

	_, err = f.svc.SignInWithPassword(ctx, "maya@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.SignInWithPassword(ctx, "maya@example.com", "NewSecret1")
	assert.NoError(t, err)

	_, err = f.svc.CurrentUser(ctx, old.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "reset signs out old sessions")

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, tok, "Another1"), ErrInvalidToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.signUpConfirmed(t, "maya@example.com", "Secret123")
	require.NoError(t, f.svc.ResetPasswordForEmail(ctx, "maya@example.com"))

	f.now = f.now.Add(2 * time.Hour)
	err := f.svc.ResetPassword(ctx, f.tokenOf(users.TokenPasswordReset), "NewSecret1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	u := f.signUpConfirmed(t, "maya@example.com", "Secret123")

	assert.ErrorIs(t, f.svc.UpdatePassword(ctx, u.ID, "wrong", "NewSecret1"), ErrInvalidCredentials)
	require.NoError(t, f.svc.UpdatePassword(ctx, u.ID, "Secret123", "NewSecret1"))

	_, err := f.svc.SignInWithPassword(ctx, "maya@example.com", "NewSecret1")
	assert.NoError(t, err)
}

func TestSignInWithGoogle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	sess, err := f.svc.SignInWithGoogle(ctx, GoogleClaims{Sub: "g-1", Email: "Maya@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, users.ProviderGoogle, sess.User.AuthProvider)
	assert.True(t, sess.User.EmailConfirmed)

	again, err := f.svc.SignInWithGoogle(ctx, GoogleClaims{Sub: "g-1", Email: "maya@example.com"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)
	assert.Len(t, f.store.Users, 1)

	assert.ErrorIs(t, f.svc.UpdatePassword(ctx, sess.User.ID, "", "NewSecret1"), ErrNoPassword)
}

func TestSignInWithGoogleLinksExistingEmail(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "maya@example.com", "Secret123")
	require.NoError(t, err)

	sess, err := f.svc.SignInWithGoogle(ctx, GoogleClaims{Sub: "g-2", Email: "maya@example.com"})
	require.NoError(t, err)
	require.NotNil(t, sess.User.GoogleSub)
	assert.Equal(t, "g-2", *sess.User.GoogleSub)
	assert.True(t, sess.User.EmailConfirmed)
	assert.Len(t, f.store.Users, 1)
}
