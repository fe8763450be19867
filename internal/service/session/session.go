// Package session decides where a signed-in user belongs: sign-in, pricing,
// onboarding or the dashboard.
package session

import (
	"context"
	"errors"
	"time"

	"creator-app/internal/domain/access"
	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository"

	"github.com/rs/zerolog"
)

type State string

const (
	NeedsAuth         State = "needs-auth"
	NeedsSubscription State = "needs-subscription"
	NeedsOnboarding   State = "needs-onboarding"
	Dashboard         State = "dashboard"
)

var routes = map[State]string{
	NeedsAuth:         "/signin",
	NeedsSubscription: "/pricing",
	NeedsOnboarding:   "/onboarding",
	Dashboard:         "/dashboard",
}

func (s State) Route() string { return routes[s] }

type Decision struct {
	State State    `json:"state"`
	Route string   `json:"route"`
	Tier  plans.ID `json:"tier"`

	// Subscription is the user's row in any status, nil when there is none.
	Subscription *billing.Subscription `json:"-"`
	Profile      *users.Profile        `json:"-"`
	// LookupFailed is set when the subscription store errored.
	LookupFailed bool `json:"-"`
}

func decide(s State) Decision {
	return Decision{State: s, Route: s.Route()}
}

type Service struct {
	profiles      repository.ProfileRepository
	subscriptions repository.SubscriptionRepository
	log           zerolog.Logger
	now           func() time.Time
}

func New(profiles repository.ProfileRepository, subs repository.SubscriptionRepository, log zerolog.Logger) *Service {
	return &Service{profiles: profiles, subscriptions: subs, log: log, now: time.Now}
}

// Sync recomputes the route for u from the store. Nothing is cached between
// calls. The only error returned is a cancelled context.
func (s *Service) Sync(ctx context.Context, u *users.User) (Decision, error) {
	if u == nil {
		return decide(NeedsAuth), nil
	}
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if err := s.profiles.Ensure(ctx, u.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("profile upsert failed")
	}
	profile, err := s.profiles.Get(ctx, u.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("profile lookup failed")
		profile = &users.Profile{UserID: u.ID}
	}

	sub, err := s.subscriptions.GetForUser(ctx, u.ID)
	if err != nil {
		d := decide(NeedsSubscription)
		d.Profile = profile
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("subscription lookup failed")
			d.LookupFailed = true
		}
		return d, nil
	}

	now := s.now()
	if !sub.IsActive(now) {
		d := decide(NeedsSubscription)
		d.Profile = profile
		d.Subscription = sub
		return d, nil
	}

	d := decide(Dashboard)
	if !profile.OnboardingCompleted {
		d = decide(NeedsOnboarding)
	}
	d.Subscription = sub
	d.Profile = profile
	d.Tier = access.EffectiveTier(now, sub)
	return d, nil
}
