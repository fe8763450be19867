// Package identity owns accounts, passwords and session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"creator-app/internal/domain/users"
	"creator-app/internal/infra/mailer"
	"creator-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	confirmationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

type Options struct {
	Users   repository.UserRepository
	Tokens  repository.TokenRepository
	Mailer  mailer.Mailer
	Secret  string
	SiteURL string
	// SignInPerMinute bounds password attempts per email. Zero disables the limit.
	SignInPerMinute int
	BcryptCost      int
	Logger          zerolog.Logger
	Now             func() time.Time
}

type Service struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	mail    mailer.Mailer
	secret  []byte
	siteURL string
	limit   *limiter
	cost    int
	log     zerolog.Logger
	now     func() time.Time
}

// Session is a signed-in user and the bearer token that represents them.
type Session struct {
	Token string
	User  *users.User
}

func New(opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mailer == nil {
		opts.Mailer = mailer.NewLog(opts.Logger)
	}
	return &Service{
		users:   opts.Users,
		tokens:  opts.Tokens,
		mail:    opts.Mailer,
		secret:  []byte(opts.Secret),
		siteURL: opts.SiteURL,
		limit:   newLimiter(opts.SignInPerMinute),
		cost:    opts.BcryptCost,
		log:     opts.Logger,
		now:     opts.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// SignUp creates a local account and mails a confirmation link. The account
// cannot sign in with a password until the email is confirmed.
func (s *Service) SignUp(ctx context.Context, email, password string) (*users.User, error) {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &users.User{
		ID:           uuid.New(),
		Email:        email,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	if err := s.sendConfirmation(ctx, u); err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to send confirmation email")
	}
	return u, nil
}

// ResendConfirmation replaces any outstanding confirmation token. Unknown and
// already confirmed addresses succeed silently.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.EmailConfirmed {
		return nil
	}
	return s.sendConfirmation(ctx, u)
}

func (s *Service) sendConfirmation(ctx context.Context, u *users.User) error {
	tok, err := s.newToken(ctx, u.ID, users.TokenEmailConfirmation, confirmationTTL)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.Confirmation(s.siteURL, u.Email, tok))
}

func (s *Service) newToken(ctx context.Context, userID uuid.UUID, kind string, ttl time.Duration) (string, error) {
	tok, err := randomToken()
	if err != nil {
		return "", err
	}
	err = s.tokens.Replace(ctx, &users.VerificationToken{
		UserID:    userID,
		Token:     tok,
		Type:      kind,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return tok, nil
}

// consume looks up and deletes a single-use token.
func (s *Service) consume(ctx context.Context, raw, kind string) (*users.VerificationToken, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	t, err := s.tokens.Find(ctx, raw, kind)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Delete(ctx, t.ID); err != nil {
		s.log.Warn().Err(err).Uint("token_id", t.ID).Msg("failed to delete used token")
	}
	if t.Expired(s.now()) {
		return nil, ErrInvalidToken
	}
	return t, nil
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) (*users.User, error) {
	t, err := s.consume(ctx, token, users.TokenEmailConfirmation)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	u.EmailConfirmed = true
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if !s.limit.Allow(email, s.now()) {
		return Session{}, ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if u.Password == nil || *u.Password == "" {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !u.EmailConfirmed {
		return Session{}, ErrEmailNotConfirmed
	}
	return s.session(u)
}

func (s *Service) session(u *users.User) (Session, error) {
	tok, err := s.issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: tok, User: u}, nil
}

// SignOut invalidates every token issued to the user so far.
func (s *Service) SignOut(ctx context.Context, userID uuid.UUID) error {
	return s.users.BumpSessionVersion(ctx, userID)
}

// CurrentUser resolves a bearer token. Tokens issued before the last sign-out
// or password reset are rejected.
func (s *Service) CurrentUser(ctx context.Context, raw string) (*users.User, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if u.SessionVersion != claims.Version {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// ResetPasswordForEmail mails a reset link. It reports success for unknown
// addresses so callers cannot probe which emails exist.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := s.newToken(ctx, u.ID, users.TokenPasswordReset, resetTTL)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, mailer.PasswordReset(s.siteURL, u.Email, tok))
}

// ResetPassword sets a new password from a reset token and signs out every
// existing session.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	t, err := s.consume(ctx, token, users.TokenPasswordReset)
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	u.Password = &hashed
	// Following the emailed link proves ownership of the address.
	u.EmailConfirmed = true
	u.SessionVersion++
	return s.users.Save(ctx, u)
}

// UpdatePassword changes the password of a signed-in user.
func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Password == nil || *u.Password == "" {
		return ErrNoPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	u.Password = &hashed
	return s.users.Save(ctx, u)
}

// GoogleClaims are the verified ID token claims used to sign a user in.
type GoogleClaims struct {
	Sub   string
	Email string
}

// SignInWithGoogle finds the user by Google subject, then by email (linking the
// subject), and otherwise creates a confirmed Google account.
func (s *Service) SignInWithGoogle(ctx context.Context, gc GoogleClaims) (Session, error) {
	if gc.Sub == "" || gc.Email == "" {
		return Session{}, ErrInvalidToken
	}

	u, err := s.users.GetByGoogleSub(ctx, gc.Sub)
	if err == nil {
		return s.session(u)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Session{}, err
	}

	email := normalizeEmail(gc.Email)
	sub := gc.Sub
	u, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.GoogleSub == nil {
			u.GoogleSub = &sub
			u.EmailConfirmed = true
			if err := s.users.Save(ctx, u); err != nil {
				return Session{}, err
			}
		}
		return s.session(u)
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, err
	}

	u = &users.User{
		ID:             uuid.New(),
		Email:          email,
		AuthProvider:   users.ProviderGoogle,
		GoogleSub:      &sub,
		Role:           users.RoleUser,
		EmailConfirmed: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}
