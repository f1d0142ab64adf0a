package ports

import (
	"context"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// UserRepository defines the interface for login-profile persistence.
// Upsert is keyed on the Discord id: it inserts on first login and
// overwrites username, avatar and last_login on every later one.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
}
