package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub provider and repository
// ---------------------------------------------------------------------------

type stubProvider struct {
	lastState   string
	exchangeErr error
	profile     domain.Profile
	profileErr  error
	guilds      []domain.Guild
	guildsErr   error
	guildCalls  int
}

func (p *stubProvider) AuthCodeURL(state string) string {
	p.lastState = state
	return "https://discord.test/oauth2/authorize?state=" + url.QueryEscape(state)
}

func (p *stubProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	if p.exchangeErr != nil {
		return "", p.exchangeErr
	}
	if code == "" {
		return "", fmt.Errorf("empty code: %w", domain.ErrUpstreamProvider)
	}
	return "tok-" + code, nil
}

func (p *stubProvider) FetchProfile(_ context.Context, token string) (*domain.Profile, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	if !strings.HasPrefix(token, "tok-") {
		return nil, fmt.Errorf("bad token %q: %w", token, domain.ErrUpstreamProvider)
	}
	profile := p.profile
	return &profile, nil
}

func (p *stubProvider) FetchGuilds(_ context.Context, token string) ([]domain.Guild, error) {
	p.guildCalls++
	if p.guildsErr != nil {
		return nil, p.guildsErr
	}
	return p.guilds, nil
}

type stubUserRepo struct {
	byDiscordID map[string]*domain.User
	upsertErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byDiscordID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Upsert(_ context.Context, user *domain.User) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	clone := *user
	r.byDiscordID[user.DiscordID] = &clone
	return nil
}

func newTestAuthService(provider *stubProvider, repo *stubUserRepo, frontendURL string) *AuthService {
	return NewAuthService(provider, repo, frontendURL, "test-secret", zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleCallback_UpsertsUser(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42", Username: "alice", Avatar: "a1b2"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	before := time.Now().UTC()
	result, err := svc.HandleCallback(context.Background(), "code1", "")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if result.Message == "" || result.RedirectURL != "" {
		t.Fatalf("expected confirmation message, got %+v", result)
	}
	if len(repo.byDiscordID) != 1 {
		t.Fatalf("expected 1 user record, got %d", len(repo.byDiscordID))
	}

	user := repo.byDiscordID["42"]
	if user == nil {
		t.Fatal("user 42 not upserted")
	}
	if user.Username != "alice" || user.Avatar != "a1b2" {
		t.Fatalf("unexpected user fields: %+v", user)
	}
	if user.LastLogin.Before(before) {
		t.Fatalf("last login %v is before the call at %v", user.LastLogin, before)
	}
	if provider.guildCalls != 0 {
		t.Fatalf("guilds fetched %d times in confirmation mode", provider.guildCalls)
	}
}

func TestHandleCallback_SecondLoginOverwrites(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42", Username: "alice", Avatar: "old"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	if _, err := svc.HandleCallback(context.Background(), "code1", ""); err != nil {
		t.Fatalf("first callback: %v", err)
	}

	provider.profile = domain.Profile{ID: "42", Username: "alice2", Avatar: "new"}
	if _, err := svc.HandleCallback(context.Background(), "code2", ""); err != nil {
		t.Fatalf("second callback: %v", err)
	}

	if len(repo.byDiscordID) != 1 {
		t.Fatalf("expected 1 record after repeat login, got %d", len(repo.byDiscordID))
	}
	user := repo.byDiscordID["42"]
	if user.Username != "alice2" || user.Avatar != "new" {
		t.Fatalf("mutable fields not overwritten: %+v", user)
	}
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	provider := &stubProvider{
		exchangeErr: fmt.Errorf("bad code: %w", domain.ErrUpstreamProvider),
	}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	_, err := svc.HandleCallback(context.Background(), "nope", "")
	if !errors.Is(err, domain.ErrUpstreamProvider) {
		t.Fatalf("expected upstream provider error, got %v", err)
	}
	if len(repo.byDiscordID) != 0 {
		t.Fatal("user upserted despite failed exchange")
	}
}

func TestHandleCallback_RedirectMode(t *testing.T) {
	guilds := []domain.Guild{
		{ID: "g1", Name: "Guild One", Owner: true, Permissions: "8"},
		{ID: "g2", Name: "Guild Two"},
	}
	provider := &stubProvider{
		profile: domain.Profile{ID: "42", Username: "alice"},
		guilds:  guilds,
	}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "https://frontend.test")

	result, err := svc.HandleCallback(context.Background(), "code1", "")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if provider.guildCalls != 1 {
		t.Fatalf("expected 1 guild fetch, got %d", provider.guildCalls)
	}

	const prefix = "https://frontend.test/guild?guilds="
	if !strings.HasPrefix(result.RedirectURL, prefix) {
		t.Fatalf("unexpected redirect url %q", result.RedirectURL)
	}

	raw, err := url.QueryUnescape(strings.TrimPrefix(result.RedirectURL, prefix))
	if err != nil {
		t.Fatalf("unescape guild payload: %v", err)
	}
	var decoded []domain.Guild
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode guild payload: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "g1" || decoded[1].ID != "g2" {
		t.Fatalf("guild payload round-trip mismatch: %+v", decoded)
	}
	if len(repo.byDiscordID) != 1 {
		t.Fatalf("expected user upsert in redirect mode, got %d records", len(repo.byDiscordID))
	}
}

func TestHandleCallback_RedirectModeEmptyGuilds(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "https://frontend.test")

	result, err := svc.HandleCallback(context.Background(), "code1", "")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	// An empty membership list must serialize as [], not null.
	if want := "https://frontend.test/guild?guilds=" + url.QueryEscape("[]"); result.RedirectURL != want {
		t.Fatalf("redirect url %q, want %q", result.RedirectURL, want)
	}
}

func TestHandleCallback_GuildFetchFailure(t *testing.T) {
	provider := &stubProvider{
		profile:   domain.Profile{ID: "42"},
		guildsErr: fmt.Errorf("discord down: %w", domain.ErrUpstreamProvider),
	}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "https://frontend.test")

	_, err := svc.HandleCallback(context.Background(), "code1", "")
	if !errors.Is(err, domain.ErrUpstreamProvider) {
		t.Fatalf("expected upstream provider error, got %v", err)
	}
	if len(repo.byDiscordID) != 0 {
		t.Fatal("user upserted despite failed guild fetch")
	}
}

func TestHandleCallback_StateRoundTrip(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	loginURL := svc.LoginURL()
	if provider.lastState == "" {
		t.Fatalf("login url %q carries no state", loginURL)
	}

	if _, err := svc.HandleCallback(context.Background(), "code1", provider.lastState); err != nil {
		t.Fatalf("callback with issued state: %v", err)
	}
}

func TestHandleCallback_InvalidState(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	_, err := svc.HandleCallback(context.Background(), "code1", "not-a-valid-state")
	if !errors.Is(err, domain.ErrInvalidOAuthState) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
	if len(repo.byDiscordID) != 0 {
		t.Fatal("user upserted despite invalid state")
	}
}

func TestHandleCallback_ExpiredState(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42"}}
	repo := newStubUserRepo()
	svc := newTestAuthService(provider, repo, "")

	// Issue a state in the past, verify with the real clock.
	past := time.Now().Add(-time.Hour)
	svc.state = newStateSigner("test-secret", func() time.Time { return past })
	svc.LoginURL()
	stale := provider.lastState

	svc.state = newStateSigner("test-secret", nil)
	_, err := svc.HandleCallback(context.Background(), "code1", stale)
	if !errors.Is(err, domain.ErrInvalidOAuthState) {
		t.Fatalf("expected invalid state error for expired state, got %v", err)
	}
}

func TestHandleCallback_UpsertFailure(t *testing.T) {
	provider := &stubProvider{profile: domain.Profile{ID: "42"}}
	repo := newStubUserRepo()
	repo.upsertErr = fmt.Errorf("mongo down: %w", domain.ErrStoreUnavailable)
	svc := newTestAuthService(provider, repo, "")

	_, err := svc.HandleCallback(context.Background(), "code1", "")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable error, got %v", err)
	}
}
