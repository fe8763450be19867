package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/domain/users"
	"creator-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Payload is what the hosted checkout function receives.
type Payload struct {
	PriceID       string             `json:"priceId"`
	Plan          plans.ID           `json:"plan"`
	BillingCycle  plans.BillingCycle `json:"billingCycle"`
	UserID        string             `json:"userId"`
	CustomerEmail string             `json:"customerEmail"`
	SuccessURL    string             `json:"successUrl"`
	CancelURL     string             `json:"cancelUrl"`
}

type Response struct {
	SessionID string `json:"sessionId,omitempty"`
	URL       string `json:"url"`
}

// Gateway starts a hosted checkout with the payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, p Payload) (Response, error)
}

type Request struct {
	User       *users.User
	Plan       plans.ID
	Cycle      plans.BillingCycle
	SuccessURL string
	CancelURL  string
}

type Result struct {
	URL       string
	SessionID string
}

type Options struct {
	Gateway       Gateway
	Prices        *PriceTable
	Subscriptions repository.SubscriptionRepository
	Sessions      repository.CheckoutRepository
	Classify      Classifier
	SiteURL       string
	Logger        zerolog.Logger
	// RecordTimeout bounds the best-effort checkout record. Defaults to 2s.
	RecordTimeout time.Duration
	Now           func() time.Time
}

type Service struct {
	opts     Options
	inFlight sync.Map // uuid.UUID -> struct{}
}

func New(opts Options) *Service {
	if opts.Classify == nil {
		opts.Classify = DefaultClassify
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts}
}

// Start resolves the price, calls the gateway once and returns the hosted
// checkout URL. Every failure is a *Error.
func (s *Service) Start(ctx context.Context, req Request) (Result, error) {
	if req.User == nil || req.User.ID == uuid.Nil {
		return Result{}, fail(ReasonUnauthenticated, nil)
	}

	plan, ok := plans.Get(req.Plan)
	if !ok {
		return Result{}, fail(ReasonInvalidPlanConfiguration, fmt.Errorf("unknown plan %q", req.Plan))
	}
	priceID, ok := s.opts.Prices.Lookup(req.Plan, req.Cycle)
	if !ok {
		return Result{}, fail(ReasonInvalidPlanConfiguration, fmt.Errorf("no price for %s/%s", req.Plan, req.Cycle))
	}

	if err := s.checkUpgrade(ctx, req); err != nil {
		return Result{}, err
	}

	if _, busy := s.inFlight.LoadOrStore(req.User.ID, struct{}{}); busy {
		return Result{}, fail(ReasonInFlight, nil)
	}
	defer s.inFlight.Delete(req.User.ID)

	payload := Payload{
		PriceID:       priceID,
		Plan:          req.Plan,
		BillingCycle:  req.Cycle,
		UserID:        req.User.ID.String(),
		CustomerEmail: req.User.Email,
		SuccessURL:    firstNonEmpty(req.SuccessURL, s.opts.SiteURL+"/dashboard?checkout=success"),
		CancelURL:     firstNonEmpty(req.CancelURL, s.opts.SiteURL+"/pricing?checkout=canceled"),
	}

	resp, err := s.opts.Gateway.CreateCheckout(ctx, payload)
	if err != nil {
		reason := s.opts.Classify(err)
		s.opts.Logger.Error().Err(err).
			Str("user_id", payload.UserID).
			Str("plan", string(req.Plan)).
			Str("reason", string(reason)).
			Msg("checkout gateway failed")
		return Result{}, fail(reason, err)
	}
	if resp.URL == "" {
		s.opts.Logger.Error().Str("user_id", payload.UserID).Msg("checkout gateway returned no url")
		return Result{}, fail(ReasonNoRedirectURL, errors.New("empty checkout url"))
	}

	s.record(ctx, req.User.ID, plan, req.Cycle, resp.SessionID)

	return Result{URL: resp.URL, SessionID: resp.SessionID}, nil
}

// checkUpgrade rejects purchases the pricing page would never offer. A failed
// lookup is treated as "no plan" so that purchase stays possible.
func (s *Service) checkUpgrade(ctx context.Context, req Request) error {
	if s.opts.Subscriptions == nil {
		return nil
	}
	sub, err := s.opts.Subscriptions.GetForUser(ctx, req.User.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.opts.Logger.Warn().Err(err).Str("user_id", req.User.ID.String()).
				Msg("subscription lookup failed; allowing checkout")
		}
		return nil
	}
	if !sub.IsActive(s.opts.Now()) {
		return nil
	}
	if cmp := plans.Compare(sub.PlanName, sub.Cycle(), req.Plan, req.Cycle); !cmp.Offerable() {
		return fail(ReasonNotAnUpgrade, fmt.Errorf("%s/%s -> %s/%s is %s",
			sub.PlanName, sub.Cycle(), req.Plan, req.Cycle, cmp.Outcome))
	}
	return nil
}

// record stores the checkout intent. It never fails the checkout.
func (s *Service) record(ctx context.Context, userID uuid.UUID, plan plans.Plan, cycle plans.BillingCycle, sessionID string) {
	if s.opts.Sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RecordTimeout)
	defer cancel()

	row := &billing.CheckoutSession{
		ID:           uuid.New(),
		UserID:       userID,
		PlanName:     string(plan.ID),
		BillingCycle: string(cycle),
		Amount:       plan.Price(cycle),
		Status:       billing.CheckoutPending,
	}
	if sessionID != "" {
		row.ProviderSessionID = &sessionID
	}
	if err := s.opts.Sessions.Create(ctx, row); err != nil {
		s.opts.Logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to record checkout session")
	}
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
