package billing

import (
	"context"

	"creator-app/internal/domain/billing"
	"creator-app/internal/service/checkout"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Starter starts a hosted checkout.
type Starter interface {
	Start(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

// Portal opens the provider's self-service billing page.
type Portal interface {
	PortalURL(ctx context.Context, customerID, returnURL string) (string, error)
}

type SessionLister interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]billing.CheckoutSession, error)
}

type Handler struct {
	checkout Starter
	portal   Portal
	sessions SessionLister
	siteURL  string
	log      zerolog.Logger
}

func NewHandler(starter Starter, portal Portal, sessions SessionLister, siteURL string, log zerolog.Logger) *Handler {
	return &Handler{checkout: starter, portal: portal, sessions: sessions, siteURL: siteURL, log: log}
}
