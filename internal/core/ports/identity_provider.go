package ports

import (
	"context"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// IdentityProvider abstracts the OAuth2 identity provider (Discord in
// production). The access token returned by ExchangeCode is opaque and
// transient: it is handed straight back to the fetch methods and never
// persisted.
type IdentityProvider interface {
	// AuthCodeURL builds the provider authorization URL the browser is
	// redirected to, embedding the given state value.
	AuthCodeURL(state string) string
	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)
	// FetchProfile retrieves the authenticated user's profile.
	FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error)
	// FetchGuilds retrieves the authenticated user's guild memberships.
	FetchGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error)
}
