package cockroach

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escrowbot/dashboard-api/internal/core/domain"
)

// EscrowRepository reads aggregate escrow figures from CockroachDB. All
// queries are parameterized and read-only; each runs on its own pooled
// connection with no shared snapshot.
type EscrowRepository struct {
	pool *pgxpool.Pool
}

func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return &EscrowRepository{pool: pool}
}

// CountByGuild counts escrows for the guild across every status.
func (r *EscrowRepository) CountByGuild(ctx context.Context, guildID string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM escrows WHERE guild_id = $1`,
		guildID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count escrows for guild %s: %w: %w", guildID, domain.ErrStoreUnavailable, err)
	}
	return total, nil
}

// PaidBalance sums paid amounts for the guild; the COALESCE keeps a
// guild with no paid rows at zero instead of NULL.
func (r *EscrowRepository) PaidBalance(ctx context.Context, guildID string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::FLOAT8 FROM escrows WHERE guild_id = $1 AND status = $2`,
		guildID, string(domain.StatusPaid),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("paid balance for guild %s: %w: %w", guildID, domain.ErrStoreUnavailable, err)
	}
	return balance, nil
}

// PaidDailyTotals buckets paid amounts by DATE(created_at), newest day
// first, returning at most limit rows. Days are distinct days with paid
// activity, so a sparse guild can span months.
func (r *EscrowRepository) PaidDailyTotals(ctx context.Context, guildID string, limit int) ([]domain.DailyTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DATE(created_at) AS day, SUM(amount)::FLOAT8 AS total
		 FROM escrows
		 WHERE guild_id = $1 AND status = $2
		 GROUP BY day
		 ORDER BY day DESC
		 LIMIT $3`,
		guildID, string(domain.StatusPaid), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals for guild %s: %w: %w", guildID, domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	totals := make([]domain.DailyTotal, 0, limit)
	for rows.Next() {
		var entry domain.DailyTotal
		if err := rows.Scan(&entry.Day, &entry.Total); err != nil {
			return nil, fmt.Errorf("scan daily total: %w: %w", domain.ErrStoreUnavailable, err)
		}
		totals = append(totals, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily totals for guild %s: %w: %w", guildID, domain.ErrStoreUnavailable, err)
	}

	return totals, nil
}
