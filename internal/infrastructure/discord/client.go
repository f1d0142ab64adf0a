// Package discord implements the IdentityProvider port against the
// Discord OAuth2 and REST APIs.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

const defaultAPIBaseURL = "https://discord.com/api"

// Endpoint is Discord's OAuth2 endpoint. Credentials go in the POST body
// of the token request, matching what Discord expects.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scopes requested on every login: identify for the profile, guilds for
// the membership list.
var Scopes = []string{"identify", "guilds"}

// Config holds the registered application's OAuth credentials. Endpoint
// and APIBaseURL are overridable for tests; zero values select the real
// Discord endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	APIBaseURL   string
	HTTPClient   *http.Client
}

// Client talks to Discord. Access tokens pass through it per call and
// are never retained.
type Client struct {
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = Endpoint
	}
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		apiBaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// AuthCodeURL builds the authorization URL the browser is redirected to.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token via a
// form-encoded POST to the token endpoint. A rejected or malformed code
// surfaces as an upstream provider error.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("discord token exchange: %w: %w", domain.ErrUpstreamProvider, err)
	}
	return token.AccessToken, nil
}

// FetchProfile retrieves /users/@me with the bearer token.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := c.getJSON(ctx, "/users/@me", accessToken, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchGuilds retrieves /users/@me/guilds with the bearer token.
func (c *Client) FetchGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	guilds := []domain.Guild{}
	if err := c.getJSON(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

func (c *Client) getJSON(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("discord request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord fetch %s: %w: %w", path, domain.ErrUpstreamProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord fetch %s: %w: status %d", path, domain.ErrUpstreamProvider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("discord decode %s: %w: %w", path, domain.ErrUpstreamProvider, err)
	}
	return nil
}
