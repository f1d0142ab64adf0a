package ports

import (
	"context"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// EscrowRepository is the read-only view over the pre-existing escrows
// table. Each method issues an independent query; callers get no
// cross-method snapshot guarantee.
type EscrowRepository interface {
	// CountByGuild counts escrows for the guild regardless of status.
	CountByGuild(ctx context.Context, guildID string) (int64, error)
	// PaidBalance sums paid amounts for the guild; zero when none exist.
	PaidBalance(ctx context.Context, guildID string) (float64, error)
	// PaidDailyTotals returns per-day paid sums for the guild, most
	// recent day first, at most limit entries.
	PaidDailyTotals(ctx context.Context, guildID string, limit int) ([]domain.DailyTotal, error)
}
