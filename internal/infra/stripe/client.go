package stripe

import (
	"context"
	"fmt"

	"creator-app/internal/service/checkout"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Client wraps one explicitly configured Stripe API client. There is no
// package-level key.
type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	return &Client{api: client.New(secretKey, nil)}
}

// NewClientWithBackends points the client at custom backends (tests, proxies).
func NewClientWithBackends(secretKey string, backends *stripeapi.Backends) *Client {
	return &Client{api: client.New(secretKey, backends)}
}

// CreateCheckout implements checkout.Gateway with a subscription-mode Checkout Session.
func (c *Client) CreateCheckout(ctx context.Context, p checkout.Payload) (checkout.Response, error) {
	meta := map[string]string{
		"user_id": p.UserID,
		"plan":    string(p.Plan),
		"cycle":   string(p.BillingCycle),
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModeSubscription)),
		SuccessURL: stripeapi.String(p.SuccessURL),
		CancelURL:  stripeapi.String(p.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{Price: stripeapi.String(p.PriceID), Quantity: stripeapi.Int64(1)},
		},
		ClientReferenceID: stripeapi.String(p.UserID),
		SubscriptionData: &stripeapi.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(p.CustomerEmail)
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return checkout.Response{}, fmt.Errorf("create checkout session: %w", err)
	}
	return checkout.Response{SessionID: s.ID, URL: s.URL}, nil
}

// PortalURL opens a customer portal session for an existing Stripe customer.
func (c *Client) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripeapi.BillingPortalSessionParams{
		Customer:  stripeapi.String(customerID),
		ReturnURL: stripeapi.String(returnURL),
	}
	params.Context = ctx

	portal, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return portal.URL, nil
}

func (c *Client) GetSubscription(ctx context.Context, id string) (*stripeapi.Subscription, error) {
	params := &stripeapi.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription %s: %w", id, err)
	}
	return sub, nil
}

// CancelSubscription ends a subscription immediately. Stripe prorates the
// unused time according to the account's settings.
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	params := &stripeapi.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := c.api.Subscriptions.Cancel(id, params); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", id, err)
	}
	return nil
}
