// Package store persists teams and challenges. SQLite (libSQL) is the
// default backend; Redis hashes and DynamoDB tables are the alternatives.
// Organizer accounts always live in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	"github.com/playperu/grandjeu/internal/config"
	"github.com/playperu/grandjeu/internal/database"
	"github.com/playperu/grandjeu/internal/grandjeu"
	"github.com/playperu/grandjeu/internal/migrations"
)

// Backends bundles the connections a process holds.
type Backends struct {
	Repo  grandjeu.Repository
	Admin *AdminStore
	DB    *sql.DB
	// Redis is nil unless REDIS_URL is set.
	Redis *redis.Client
	// Checks are the reachability probes of every connection in use.
	Checks map[string]func(context.Context) error
}

// Open connects every backend cfg asks for and applies migrations.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	b := &Backends{
		Admin:  NewAdminStore(db),
		DB:     db,
		Checks: map[string]func(context.Context) error{"sqlite": db.PingContext},
	}

	if cfg.RedisURL != "" {
		rdb, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		b.Redis = rdb
		b.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info("connected to redis")
	}

	switch cfg.StoreBackend {
	case "redis":
		b.Repo = NewRedisStore(b.Redis, cfg.RedisPrefix)
	case "dynamodb":
		client, err := OpenDynamo(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to dynamodb: %w", err)
		}
		ds := NewDynamoStore(client, cfg.DynamoTeamsTable, cfg.DynamoChallengesTable)
		b.Repo = ds
		b.Checks["dynamodb"] = ds.Ping
		logger.Info("using dynamodb", "region", cfg.AWSRegion,
			"teams_table", cfg.DynamoTeamsTable, "challenges_table", cfg.DynamoChallengesTable)
	default:
		b.Repo = NewSQLiteStore(db)
	}
	return b, nil
}

func (b *Backends) Close() error {
	var errs []error
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	if b.DB != nil {
		errs = append(errs, b.DB.Close())
	}
	return errors.Join(errs...)
}

func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// OpenDynamo builds a client from the default AWS credential chain. A
// non-empty endpoint points it at a local DynamoDB.
func OpenDynamo(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
