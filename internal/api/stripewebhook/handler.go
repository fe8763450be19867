package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"creator-app/internal/repository"
	"creator-app/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

// errIgnore marks events that are acknowledged without changing state, so
// Stripe does not keep redelivering them.
var errIgnore = errors.New("event ignored")

func ignore(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errIgnore, fmt.Sprintf(format, args...))
}

// SubscriptionFetcher loads the full subscription a checkout session created.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

// SubscriptionCanceler ends a provider subscription that a newer purchase
// replaced.
type SubscriptionCanceler interface {
	CancelSubscription(ctx context.Context, id string) error
}

type Options struct {
	Secret        string
	Fetcher       SubscriptionFetcher
	Subscriptions repository.SubscriptionRepository
	Sessions      repository.CheckoutRepository
	Events        repository.WebhookEventRepository
	Prices        *checkout.PriceTable
	Logger        zerolog.Logger
	Now           func() time.Time

	// Canceler is optional. Without it a replaced subscription keeps billing
	// until it is canceled in Stripe.
	Canceler SubscriptionCanceler
}

type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{opts: opts}
}

// POST /webhook
func (h *Handler) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.opts.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.opts.Logger.Warn().Err(err).Msg("stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	status, err := h.Process(c.Request.Context(), event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Process applies a verified event once. Redelivered event ids are skipped.
// A returned error means the event should be retried by the sender.
func (h *Handler) Process(ctx context.Context, event stripe.Event) (string, error) {
	log := h.opts.Logger.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	first, err := h.opts.Events.MarkProcessed(ctx, event.ID, string(event.Type))
	if err != nil {
		log.Error().Err(err).Msg("failed to record webhook event")
		return "", err
	}
	if !first {
		log.Info().Msg("duplicate webhook event")
		return "duplicate", nil
	}

	if event.Data == nil {
		return "ignored", nil
	}

	switch event.Type {
	case "checkout.session.completed":
		err = h.checkoutCompleted(ctx, event.Data.Raw)
	case "checkout.session.expired":
		err = h.checkoutExpired(ctx, event.Data.Raw)
	case "customer.subscription.created", "customer.subscription.updated":
		err = h.subscriptionUpdated(ctx, event.Data.Raw)
	case "customer.subscription.deleted":
		err = h.subscriptionDeleted(ctx, event.Data.Raw)
	default:
		return "ignored", nil
	}

	switch {
	case err == nil:
		log.Info().Msg("webhook event applied")
		return "received", nil
	case errors.Is(err, errIgnore):
		log.Warn().Err(err).Msg("webhook event skipped")
		return "ignored", nil
	}

	log.Error().Err(err).Msg("webhook event failed")
	if ferr := h.opts.Events.Forget(context.WithoutCancel(ctx), event.ID); ferr != nil {
		log.Error().Err(ferr).Msg("failed to release webhook event for retry")
	}
	return "", err
}
