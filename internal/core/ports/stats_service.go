package ports

import (
	"context"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

type StatsService interface {
	// GuildStats aggregates count, paid balance and the paid-day chart
	// for one guild. A guild with no escrows yields zeroes, not an error.
	GuildStats(ctx context.Context, guildID string) (*domain.GuildStats, error)
}

// StatsCache is an optional read-through cache in front of the stats
// queries. A nil cache disables caching entirely.
type StatsCache interface {
	// Get returns the cached stats for a guild, or (nil, nil) on a miss.
	Get(ctx context.Context, guildID string) (*domain.GuildStats, error)
	// Set stores the stats for a guild until the cache TTL expires.
	Set(ctx context.Context, stats *domain.GuildStats) error
}
