package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/escrowbot/dashboard-api/internal/api/metrics"
	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// StatsCache keeps computed guild stats in Redis for a short TTL so a
// busy dashboard does not re-run the three aggregate queries on every
// poll. Entries are JSON; key format: stats:guild:<guild_id>.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

type cachedStats struct {
	Total   int64         `json:"total"`
	Balance float64       `json:"balance"`
	Chart   []cachedEntry `json:"chart"`
}

type cachedEntry struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
}

// Get returns the cached stats for a guild, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context, guildID string) (*domain.GuildStats, error) {
	raw, err := c.client.Get(ctx, c.key(guildID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.StatsCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var cached cachedStats
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("stats cache decode: %w", err)
	}

	metrics.StatsCacheTotal.WithLabelValues("hit").Inc()

	stats := &domain.GuildStats{
		GuildID: guildID,
		Total:   cached.Total,
		Balance: cached.Balance,
		Chart:   make([]domain.DailyTotal, 0, len(cached.Chart)),
	}
	for _, e := range cached.Chart {
		stats.Chart = append(stats.Chart, domain.DailyTotal{Day: e.Day, Total: e.Total})
	}
	return stats, nil
}

// Set stores the stats for a guild until the TTL expires.
func (c *StatsCache) Set(ctx context.Context, stats *domain.GuildStats) error {
	cached := cachedStats{
		Total:   stats.Total,
		Balance: stats.Balance,
		Chart:   make([]cachedEntry, 0, len(stats.Chart)),
	}
	for _, e := range stats.Chart {
		cached.Chart = append(cached.Chart, cachedEntry{Day: e.Day, Total: e.Total})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(stats.GuildID), raw, c.ttl).Err()
}

func (c *StatsCache) key(guildID string) string {
	return "stats:guild:" + guildID
}
