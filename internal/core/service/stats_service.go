package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
)

// StatsService aggregates escrow statistics per guild. The three
// underlying queries run one after another without a shared transaction,
// matching the read-only contract of the escrows table.
type StatsService struct {
	escrows ports.EscrowRepository
	cache   ports.StatsCache // nil disables caching
	logger  zerolog.Logger
}

func NewStatsService(escrows ports.EscrowRepository, cache ports.StatsCache, logger zerolog.Logger) *StatsService {
	return &StatsService{escrows: escrows, cache: cache, logger: logger}
}

// GuildStats computes count, paid balance and the paid-day chart for one
// guild. The chart covers the most recent ChartDays distinct days that
// had paid activity, in ascending day order. A guild with no escrows
// yields zero values and an empty chart.
func (s *StatsService) GuildStats(ctx context.Context, guildID string) (*domain.GuildStats, error) {
	if strings.TrimSpace(guildID) == "" {
		return nil, domain.ErrInvalidGuildID
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, guildID)
		if err != nil {
			s.logger.Warn().Err(err).Str("guild_id", guildID).Msg("stats cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	total, err := s.escrows.CountByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("count escrows: %w", err)
	}

	balance, err := s.escrows.PaidBalance(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("paid balance: %w", err)
	}

	chart, err := s.escrows.PaidDailyTotals(ctx, guildID, domain.ChartDays)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	// Query order is newest day first; the response wants oldest first.
	reverse(chart)

	stats := &domain.GuildStats{
		GuildID: guildID,
		Total:   total,
		Balance: balance,
		Chart:   chart,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Str("guild_id", guildID).Msg("stats cache write failed")
		}
	}

	return stats, nil
}

func reverse(entries []domain.DailyTotal) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
