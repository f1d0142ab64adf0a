package domain

import (
	"errors"
	"time"
)

// EscrowStatus is the lifecycle state of an escrow row. Only "paid" is
// significant to the aggregation queries; other states are counted but
// never summed.
type EscrowStatus string

const StatusPaid EscrowStatus = "paid"

// ChartDays is how many distinct paid days the chart covers: the most
// recent days with at least one paid escrow, not a trailing calendar
// window.
const ChartDays = 7

var (
	// ErrUpstreamProvider covers a rejected authorization code, a failed
	// token exchange, and a failed profile or guild fetch.
	ErrUpstreamProvider = errors.New("upstream provider error")
	// ErrInvalidOAuthState is returned when a state value is echoed back
	// but fails verification.
	ErrInvalidOAuthState = errors.New("invalid oauth state")
	// ErrStoreUnavailable covers per-request document or relational store
	// failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidGuildID is returned for a blank stats identifier.
	ErrInvalidGuildID = errors.New("invalid guild id")
)

// DailyTotal is one chart bucket: the sum of paid amounts created on a
// single calendar day (store timezone).
type DailyTotal struct {
	Day   time.Time
	Total float64
}

// GuildStats is the aggregate view behind GET /api/stats/:guildId.
//
// Total counts escrows in every status; Balance sums paid amounts only.
// The three underlying queries run without a shared snapshot, so the
// fields may reflect different instants under concurrent writes.
type GuildStats struct {
	GuildID string
	Total   int64
	Balance float64
	Chart   []DailyTotal
}
