package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/grandjeu.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// StoreBackend selects where teams and challenges live: sqlite, redis
	// or dynamodb. Admin accounts always stay in SQLite.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	RedisURL     string `env:"REDIS_URL"`
	RedisPrefix  string `env:"REDIS_PREFIX" envDefault:"grandjeu"`

	AWSRegion             string `env:"AWS_REGION" envDefault:"eu-west-3"`
	DynamoEndpoint        string `env:"DYNAMODB_ENDPOINT"`
	DynamoTeamsTable      string `env:"DYNAMODB_TEAMS_TABLE" envDefault:"grandjeu-teams"`
	DynamoChallengesTable string `env:"DYNAMODB_CHALLENGES_TABLE" envDefault:"grandjeu-challenges"`

	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"72h"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@grandjeu.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin2025"`

	SeedCatalog string `env:"SEED_CATALOG" envDefault:"adventist"`
	SeedTeams   bool   `env:"SEED_TEAMS" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case "sqlite", "dynamodb":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.SeedCatalog {
	case "adventist", "pathfinder", "none", "":
	default:
		return fmt.Errorf("unknown SEED_CATALOG %q", c.SeedCatalog)
	}
	return nil
}
