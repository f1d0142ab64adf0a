package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/escrowbot/dashboard-api/internal/api/metrics"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
)

// StatsHandler serves the read-only escrow statistics endpoint.
type StatsHandler struct {
	statsService ports.StatsService
}

func NewStatsHandler(statsService ports.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

type chartEntryResponse struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
}

type statsResponse struct {
	Total   int64                `json:"total"`
	Balance float64              `json:"balance"`
	Chart   []chartEntryResponse `json:"chart"`
}

// Get handles GET /api/stats/:guildId.
//
// Chart days are rendered as calendar dates (YYYY-MM-DD) in ascending
// order. A guild with no escrows yields zeroes and an empty chart, the
// same as an unknown guild.
//
// @Summary      Aggregated escrow stats for a guild
// @Tags         stats
// @Produce      json
// @Param        guildId  path      string  true  "guild identifier"
// @Success      200      {object}  statsResponse
// @Failure      400      {object}  map[string]string
// @Failure      503      {object}  map[string]string
// @Router       /api/stats/{guildId} [get]
func (h *StatsHandler) Get(c echo.Context) error {
	stats, err := h.statsService.GuildStats(c.Request().Context(), c.Param("guildId"))
	if err != nil {
		metrics.StatsRequestsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.StatsRequestsTotal.WithLabelValues("success").Inc()

	chart := make([]chartEntryResponse, 0, len(stats.Chart))
	for _, entry := range stats.Chart {
		chart = append(chart, chartEntryResponse{
			Day:   entry.Day.Format("2006-01-02"),
			Total: entry.Total,
		})
	}

	return c.JSON(http.StatusOK, statsResponse{
		Total:   stats.Total,
		Balance: stats.Balance,
		Chart:   chart,
	})
}
