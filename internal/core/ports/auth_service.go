package ports

import "context"

// CallbackResult tells the HTTP layer how to answer a completed OAuth
// callback. Exactly one field is set: RedirectURL when the service runs
// in redirect mode (frontend URL configured), Message otherwise.
type CallbackResult struct {
	Message     string
	RedirectURL string
}

type AuthService interface {
	// LoginURL returns the provider authorization URL for a fresh login.
	LoginURL() string
	// HandleCallback runs the full code-for-token exchange, upserts the
	// user record and decides the response shape. state may be empty.
	HandleCallback(ctx context.Context, code, state string) (*CallbackResult, error)
}
