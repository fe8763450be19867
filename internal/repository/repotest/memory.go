// Package repotest provides in-memory implementations of the repository
// interfaces with the same keying and conflict rules as the gorm stores.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu            sync.Mutex
	Users         map[uuid.UUID]*users.User
	Profiles      map[uuid.UUID]*users.Profile
	Subscriptions map[uuid.UUID]*billing.Subscription
	Sessions      []*billing.CheckoutSession
	Tokens        []*users.VerificationToken
	Events        map[string]string

	// Err, when set, is returned by every call. The narrower fields fail a
	// single store.
	Err             error
	SubscriptionErr error
	CheckoutErr     error

	nextTokenID uint
}

func New() *Store {
	return &Store{
		Users:         map[uuid.UUID]*users.User{},
		Profiles:      map[uuid.UUID]*users.Profile{},
		Subscriptions: map[uuid.UUID]*billing.Subscription{},
		Events:        map[string]string{},
	}
}

func (s *Store) UsersRepo() repository.UserRepository                 { return userStore{s} }
func (s *Store) ProfilesRepo() repository.ProfileRepository           { return profileStore{s} }
func (s *Store) SubscriptionsRepo() repository.SubscriptionRepository { return subscriptionStore{s} }
func (s *Store) CheckoutRepo() repository.CheckoutRepository          { return checkoutStore{s} }
func (s *Store) TokensRepo() repository.TokenRepository               { return tokenStore{s} }
func (s *Store) EventsRepo() repository.WebhookEventRepository        { return eventStore{s} }

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.Users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.s.Users[u.ID] = &cp
	return nil
}

func (r userStore) find(match func(*users.User) bool) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userStore) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.ID == id })
}

func (r userStore) GetByEmail(_ context.Context, email string) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.Email == email })
}

func (r userStore) GetByGoogleSub(_ context.Context, sub string) (*users.User, error) {
	return r.find(func(u *users.User) bool { return u.GoogleSub != nil && *u.GoogleSub == sub })
}

func (r userStore) Save(_ context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	cp := *u
	r.s.Users[u.ID] = &cp
	return nil
}

func (r userStore) BumpSessionVersion(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	u, ok := r.s.Users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SessionVersion++
	return nil
}

func (r userStore) List(_ context.Context) ([]users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]users.User, 0, len(r.s.Users))
	for _, u := range r.s.Users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type profileStore struct{ s *Store }

func (r profileStore) Ensure(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.Profiles[userID]; !ok {
		r.s.Profiles[userID] = &users.Profile{UserID: userID, CreatedAt: time.Now()}
	}
	return nil
}

func (r profileStore) Get(_ context.Context, userID uuid.UUID) (*users.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.Profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r profileStore) Update(_ context.Context, userID uuid.UUID, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	p, ok := r.s.Profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "display_name":
			p.DisplayName = v.(string)
		case "niche":
			p.Niche = v.(string)
		case "tone":
			p.Tone = v.(string)
		case "content_format":
			p.ContentFormat = v.(string)
		case "fame_goal":
			p.FameGoal = v.(string)
		case "follower_bucket":
			p.FollowerBucket = v.(string)
		case "onboarding_completed":
			p.OnboardingCompleted = v.(bool)
		}
	}
	return nil
}

type subscriptionStore struct{ s *Store }

func (r subscriptionStore) err() error {
	if r.s.Err != nil {
		return r.s.Err
	}
	return r.s.SubscriptionErr
}

func (r subscriptionStore) GetForUser(_ context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.err(); err != nil {
		return nil, err
	}
	sub, ok := r.s.Subscriptions[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r subscriptionStore) GetByProviderID(_ context.Context, id string) (*billing.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, sub := range r.s.Subscriptions {
		if sub.ProviderSubscriptionID != nil && *sub.ProviderSubscriptionID == id {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r subscriptionStore) Upsert(_ context.Context, sub *billing.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.err(); err != nil {
		return err
	}
	cp := *sub
	cp.UpdatedAt = time.Now()
	if existing, ok := r.s.Subscriptions[sub.UserID]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.ID = uint(len(r.s.Subscriptions) + 1)
		cp.CreatedAt = cp.UpdatedAt
	}
	r.s.Subscriptions[sub.UserID] = &cp
	return nil
}

func (r subscriptionStore) List(_ context.Context) ([]billing.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]billing.Subscription, 0, len(r.s.Subscriptions))
	for _, sub := range r.s.Subscriptions {
		out = append(out, *sub)
	}
	return out, nil
}

type checkoutStore struct{ s *Store }

func (r checkoutStore) Create(_ context.Context, cs *billing.CheckoutSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.s.CheckoutErr != nil {
		return r.s.CheckoutErr
	}
	cp := *cs
	cp.CreatedAt = time.Now()
	r.s.Sessions = append(r.s.Sessions, &cp)
	return nil
}

func (r checkoutStore) SetStatusByProviderID(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, cs := range r.s.Sessions {
		if cs.ProviderSessionID != nil && *cs.ProviderSessionID == id {
			cs.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r checkoutStore) ListForUser(_ context.Context, userID uuid.UUID) ([]billing.CheckoutSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []billing.CheckoutSession
	for _, cs := range r.s.Sessions {
		if cs.UserID == userID {
			out = append(out, *cs)
		}
	}
	return out, nil
}

type tokenStore struct{ s *Store }

func (r tokenStore) Replace(_ context.Context, t *users.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	kept := r.s.Tokens[:0]
	for _, existing := range r.s.Tokens {
		if existing.UserID != t.UserID || existing.Type != t.Type {
			kept = append(kept, existing)
		}
	}
	r.s.nextTokenID++
	t.ID = r.s.nextTokenID
	cp := *t
	r.s.Tokens = append(kept, &cp)
	return nil
}

func (r tokenStore) Find(_ context.Context, token, tokenType string) (*users.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, t := range r.s.Tokens {
		if t.Token == token && t.Type == tokenType {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r tokenStore) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for i, t := range r.s.Tokens {
		if t.ID == id {
			r.s.Tokens = append(r.s.Tokens[:i], r.s.Tokens[i+1:]...)
			return nil
		}
	}
	return nil
}

type eventStore struct{ s *Store }

func (r eventStore) MarkProcessed(_ context.Context, id, eventType string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	if _, ok := r.s.Events[id]; ok {
		return false, nil
	}
	r.s.Events[id] = eventType
	return true, nil
}

func (r eventStore) Forget(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Events, id)
	return nil
}
