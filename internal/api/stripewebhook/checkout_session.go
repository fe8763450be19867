package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"creator-app/internal/domain/billing"
	"creator-app/internal/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) checkoutCompleted(ctx context.Context, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return ignore("malformed checkout session: %v", err)
	}
	if session.Mode != stripe.CheckoutSessionModeSubscription {
		return ignore("checkout session %s is not a subscription", session.ID)
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		return ignore("checkout session %s has no subscription", session.ID)
	}

	sub, err := h.opts.Fetcher.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}

	userID, err := userIDFrom(sub.Metadata, session.ClientReferenceID, session.Metadata["user_id"])
	if err != nil {
		return err
	}
	row, err := h.toRow(sub, userID)
	if err != nil {
		return err
	}
	if row.ProviderCustomerID == nil && session.Customer != nil && session.Customer.ID != "" {
		id := session.Customer.ID
		row.ProviderCustomerID = &id
	}
	replaced, err := h.replacedSubscription(ctx, row)
	if err != nil {
		return err
	}
	if err := h.opts.Subscriptions.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	h.cancelReplaced(ctx, row.UserID, replaced)

	return h.setSessionStatus(ctx, session.ID, billing.CheckoutCompleted)
}

// replacedSubscription returns the provider id of a still-billing subscription
// that this purchase replaces, or "" when there is none. A completed checkout
// always takes over the row.
func (h *Handler) replacedSubscription(ctx context.Context, row *billing.Subscription) (string, error) {
	current, err := h.currentOther(ctx, row)
	if current == nil || err != nil {
		return "", err
	}
	return billingID(current), nil
}

// cancelReplaced stops the old subscription so the user is not billed twice.
// The new row is already stored, so a failure is logged and the event still
// succeeds; the old subscription's later events are ignored by checkReplaces.
func (h *Handler) cancelReplaced(ctx context.Context, userID uuid.UUID, subID string) {
	if subID == "" {
		return
	}
	log := h.opts.Logger.With().Str("user_id", userID.String()).Str("replaced_subscription", subID).Logger()
	if h.opts.Canceler == nil {
		log.Warn().Msg("replaced subscription left active: no canceler configured")
		return
	}
	if err := h.opts.Canceler.CancelSubscription(ctx, subID); err != nil {
		log.Error().Err(err).Msg("failed to cancel replaced subscription")
		return
	}
	log.Info().Msg("canceled replaced subscription")
}

func (h *Handler) checkoutExpired(ctx context.Context, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return ignore("malformed checkout session: %v", err)
	}
	return h.setSessionStatus(ctx, session.ID, billing.CheckoutExpired)
}

// setSessionStatus updates the recorded intent. Sessions we never recorded
// are fine: the record is best effort.
func (h *Handler) setSessionStatus(ctx context.Context, sessionID, status string) error {
	if sessionID == "" {
		return nil
	}
	err := h.opts.Sessions.SetStatusByProviderID(ctx, sessionID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
