package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/escrowbot/dashboard-api/internal/api"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
	"github.com/escrowbot/dashboard-api/internal/core/service"
	"github.com/escrowbot/dashboard-api/internal/infrastructure/config"
	"github.com/escrowbot/dashboard-api/internal/infrastructure/db/cockroach"
	mongostore "github.com/escrowbot/dashboard-api/internal/infrastructure/db/mongo"
	redisstore "github.com/escrowbot/dashboard-api/internal/infrastructure/db/redis"
	"github.com/escrowbot/dashboard-api/internal/infrastructure/discord"
	"github.com/escrowbot/dashboard-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("loading configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// A store that cannot be reached at startup is fatal: the process
	// must not become ready without its backends.
	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URL:      cfg.Mongo.URL,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to mongodb failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	pool, err := cockroach.Connect(ctx, cfg.Cockroach.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to cockroachdb failed")
	}
	defer pool.Close()

	userRepo := mongostore.NewUserRepository(mongoDB)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("creating mongodb indexes failed")
	}

	var statsCache ports.StatsCache
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to redis failed")
		}
		defer redisClient.Close()
		statsCache = redisstore.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	}

	provider := discord.NewClient(discord.Config{
		ClientID:     cfg.Discord.ClientID,
		ClientSecret: cfg.Discord.ClientSecret,
		RedirectURL:  cfg.Discord.RedirectURL,
	})

	authService := service.NewAuthService(provider, userRepo, cfg.FrontendURL, cfg.StateSecret, log)
	statsService := service.NewStatsService(cockroach.NewEscrowRepository(pool), statsCache, log)

	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Stats:     statsService,
		Mongo:     mongoDB,
		Cockroach: pool,
		Redis:     redisClient,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("backend running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
