package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
)

const loginConfirmation = "Discord login successful. Backend is working."

// AuthService orchestrates the OAuth login flow: authorization redirect,
// code-for-token exchange, profile (and guild) fetch, and the user upsert.
//
// When frontendURL is non-empty the service runs in redirect mode: the
// callback additionally fetches the user's guilds and answers with a
// redirect to {frontendURL}/guild carrying the guild list URL-encoded in
// the query string. Otherwise the callback answers with a static
// confirmation message.
type AuthService struct {
	provider    ports.IdentityProvider
	users       ports.UserRepository
	frontendURL string
	state       *stateSigner
	logger      zerolog.Logger
	now         func() time.Time
}

func NewAuthService(provider ports.IdentityProvider, users ports.UserRepository, frontendURL, stateSecret string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		provider:    provider,
		users:       users,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		state:       newStateSigner(stateSecret, nil),
		logger:      logger,
		now:         time.Now,
	}
}

// LoginURL returns the provider authorization URL for a fresh login
// attempt, with a newly issued state value embedded.
func (s *AuthService) LoginURL() string {
	state, err := s.state.Issue()
	if err != nil {
		// A failed nonce read is the only way here; proceed without state
		// rather than refusing the login.
		s.logger.Warn().Err(err).Msg("issuing oauth state failed")
		state = ""
	}
	return s.provider.AuthCodeURL(state)
}

// HandleCallback completes the handshake for one authorization code.
// The access token obtained in step one lives only for the duration of
// this call. state is verified when present and tolerated when absent:
// legacy login links carry none.
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*ports.CallbackResult, error) {
	if state != "" {
		if err := s.state.Verify(state); err != nil {
			return nil, err
		}
	}

	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	profile, err := s.provider.FetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("profile fetch: %w", err)
	}

	var guilds []domain.Guild
	if s.frontendURL != "" {
		guilds, err = s.provider.FetchGuilds(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("guild fetch: %w", err)
		}
	}

	user := &domain.User{
		DiscordID: profile.ID,
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		LastLogin: s.now().UTC(),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("user upsert: %w", err)
	}

	s.logger.Info().Str("discord_id", profile.ID).Str("username", profile.Username).Msg("login completed")

	if s.frontendURL == "" {
		return &ports.CallbackResult{Message: loginConfirmation}, nil
	}

	if guilds == nil {
		guilds = []domain.Guild{}
	}
	payload, err := json.Marshal(guilds)
	if err != nil {
		return nil, fmt.Errorf("guild payload: %w", err)
	}
	return &ports.CallbackResult{
		RedirectURL: s.frontendURL + "/guild?guilds=" + url.QueryEscape(string(payload)),
	}, nil
}
