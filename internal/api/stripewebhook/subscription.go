package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"creator-app/internal/domain/billing"
	"creator-app/internal/domain/plans"
	"creator-app/internal/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

func (h *Handler) subscriptionUpdated(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return ignore("malformed subscription: %v", err)
	}
	userID, err := h.ownerOf(ctx, &sub)
	if err != nil {
		return err
	}
	row, err := h.toRow(&sub, userID)
	if err != nil {
		return err
	}
	replaced, err := h.checkReplaces(ctx, row)
	if err != nil {
		return err
	}
	if err := h.opts.Subscriptions.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	h.cancelReplaced(ctx, row.UserID, replaced)
	return nil
}

// checkReplaces keeps the one row per user pointed at the subscription that
// grants access. Events for another provider subscription only take over an
// active row when they are an upgrade of it; anything else (a renewal or
// deletion of a plan the user already moved off) is ignored. When an upgrade
// takes over, the id of the old, still-billing subscription is returned.
func (h *Handler) checkReplaces(ctx context.Context, row *billing.Subscription) (string, error) {
	current, err := h.currentOther(ctx, row)
	if current == nil || err != nil {
		return "", err
	}

	now := h.opts.Now()
	if !current.IsActive(now) {
		return "", nil
	}
	if row.IsActive(now) && plans.Compare(current.PlanName, current.Cycle(), row.Plan(), row.Cycle()).Offerable() {
		return billingID(current), nil
	}
	return "", ignore("subscription %s would replace active %s (%s)",
		*row.ProviderSubscriptionID, *current.ProviderSubscriptionID, current.PlanName)
}

// currentOther loads the user's row when it tracks a different provider
// subscription than row, and nil otherwise.
func (h *Handler) currentOther(ctx context.Context, row *billing.Subscription) (*billing.Subscription, error) {
	current, err := h.opts.Subscriptions.GetForUser(ctx, row.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current subscription: %w", err)
	}
	if current.ProviderSubscriptionID == nil || *current.ProviderSubscriptionID == "" ||
		row.ProviderSubscriptionID == nil || *current.ProviderSubscriptionID == *row.ProviderSubscriptionID {
		return nil, nil
	}
	return current, nil
}

// billingID is the provider id of sub when Stripe still charges for it.
func billingID(sub *billing.Subscription) string {
	if billing.NormalizeStatus(sub.Status) == billing.StatusCanceled {
		return ""
	}
	return *sub.ProviderSubscriptionID
}

// subscriptionDeleted ends access when the subscription ended rather than at
// the old period end.
func (h *Handler) subscriptionDeleted(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return ignore("malformed subscription: %v", err)
	}
	userID, err := h.ownerOf(ctx, &sub)
	if err != nil {
		return err
	}
	row, err := h.toRow(&sub, userID)
	if err != nil {
		return err
	}
	ended := h.opts.Now()
	if sub.EndedAt > 0 {
		ended = time.Unix(sub.EndedAt, 0)
	}
	row.Status = billing.StatusCanceled
	row.CurrentPeriodEnd = &ended
	// A canceled row never takes over an active one, so nothing is replaced.
	if _, err := h.checkReplaces(ctx, row); err != nil {
		return err
	}
	if err := h.opts.Subscriptions.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// ownerOf resolves the app user from metadata, falling back to the row that
// already tracks this provider subscription.
func (h *Handler) ownerOf(ctx context.Context, sub *stripe.Subscription) (uuid.UUID, error) {
	if id, err := userIDFrom(sub.Metadata); err == nil {
		return id, nil
	}
	existing, err := h.opts.Subscriptions.GetByProviderID(ctx, sub.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, ignore("no user for subscription %s", sub.ID)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return existing.UserID, nil
}

func userIDFrom(md map[string]string, fallbacks ...string) (uuid.UUID, error) {
	candidates := append([]string{md["user_id"]}, fallbacks...)
	for _, s := range candidates {
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, ignore("invalid user_id %q", s)
		}
		return id, nil
	}
	return uuid.Nil, ignore("missing user_id (metadata.user_id or client_reference_id)")
}

// toRow maps a Stripe subscription onto our row. The plan comes from the price
// table first and from the checkout metadata second.
func (h *Handler) toRow(sub *stripe.Subscription, userID uuid.UUID) (*billing.Subscription, error) {
	plan, cycle, ok := h.planOf(sub)
	if !ok {
		return nil, ignore("subscription %s has no known plan", sub.ID)
	}

	subID := sub.ID
	row := &billing.Subscription{
		UserID:                 userID,
		PlanName:               string(plan),
		BillingCycle:           string(cycle),
		Status:                 billing.NormalizeStatus(string(sub.Status)),
		ProviderSubscriptionID: &subID,
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0)
		row.CurrentPeriodEnd = &end
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		id := sub.Customer.ID
		row.ProviderCustomerID = &id
	}
	return row, nil
}

func (h *Handler) planOf(sub *stripe.Subscription) (plans.ID, plans.BillingCycle, bool) {
	var price *stripe.Price
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		price = sub.Items.Data[0].Price
	}

	if price != nil && h.opts.Prices != nil {
		if plan, cycle, ok := h.opts.Prices.Reverse(price.ID); ok {
			return plan, cycle, true
		}
	}

	plan := plans.ParseID(sub.Metadata["plan"])
	if _, ok := plans.Get(plan); !ok {
		return plans.None, "", false
	}
	cycle, ok := plans.ParseCycle(sub.Metadata["cycle"])
	if !ok && price != nil && price.Recurring != nil {
		cycle, ok = plans.ParseCycle(string(price.Recurring.Interval))
	}
	if !ok {
		cycle = plans.Monthly
	}
	return plan, cycle, true
}
