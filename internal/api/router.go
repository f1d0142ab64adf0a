package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/escrowbot/dashboard-api/internal/api/handler"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
)

// Dependencies carries everything the router needs, built once at
// startup. Store handles are only used by the readiness probe; request
// handlers go through the service ports.
type Dependencies struct {
	Auth      ports.AuthService
	Stats     ports.StatsService
	Mongo     *mongo.Database
	Cockroach *pgxpool.Pool
	Redis     *redis.Client // nil when the stats cache is disabled
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes
// registered. CORS is open to any origin and the stats endpoint is
// unauthenticated.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("escrow"))

	// --- OAuth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.GET("/auth/discord", authHandler.Login)
	e.GET("/auth/callback", authHandler.Callback)

	// --- Stats route ---
	statsHandler := handler.NewStatsHandler(deps.Stats)
	e.GET("/api/stats/:guildId", statsHandler.Get)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Cockroach, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
