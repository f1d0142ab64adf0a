package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Config is the full environment configuration, enumerated once at
// startup and passed down explicitly. Handlers never read the
// environment themselves.
type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// FrontendURL switches the OAuth callback into redirect mode: when
	// set, the callback fetches the user's guilds and redirects to
	// {FrontendURL}/guild with the guild list in the query string.
	FrontendURL string `env:"FRONTEND_URL" validate:"omitempty,url"`

	// StateSecret signs the OAuth state value. Falls back to the Discord
	// client secret when left empty.
	StateSecret string `env:"STATE_SECRET"`

	// StatsCacheTTL enables the Redis stats cache when positive. Zero
	// (the default) keeps the service cache-free and Redis is never
	// dialed.
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL, default=0"`

	Mongo     MongoConfig
	Cockroach CockroachConfig
	Discord   DiscordConfig
	Redis     RedisConfig
}

type MongoConfig struct {
	URL      string `env:"MONGO_URL, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=escrow_dashboard"`
}

type CockroachConfig struct {
	URL string `env:"COCKROACH_URL" validate:"required"`
}

type DiscordConfig struct {
	ClientID     string `env:"DISCORD_CLIENT_ID"     validate:"required"`
	ClientSecret string `env:"DISCORD_CLIENT_SECRET" validate:"required"`
	RedirectURL  string `env:"DISCORD_REDIRECT"      validate:"required,url"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates it. Missing Discord credentials or a missing Cockroach
// URL are startup errors.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.StateSecret == "" {
		cfg.StateSecret = cfg.Discord.ClientSecret
	}
	return &cfg, nil
}

// CacheEnabled reports whether the Redis stats cache should be wired in.
func (c *Config) CacheEnabled() bool {
	return c.StatsCacheTTL > 0
}
