package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/grandjeu/internal/config"
	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
	"github.com/playperu/grandjeu/internal/handler/health"
	"github.com/playperu/grandjeu/internal/server"
	"github.com/playperu/grandjeu/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Storage ---
	b, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := bootstrap(ctx, cfg, b, logger); err != nil {
		return err
	}

	// --- Live feed ---
	var f feed.Feed = feed.NewBroker()
	if b.Redis != nil {
		f = feed.NewRedisFeed(b.Redis, cfg.RedisPrefix, logger)
		logger.Info("live updates via redis pub/sub")
	}

	// --- HTTP Server ---
	srv := server.New(server.Options{Addr: cfg.HTTPAddr, ShutdownTimeout: cfg.ShutdownTimeout}, logger, server.Deps{
		Repo:     b.Repo,
		Admin:    b.Admin,
		Feed:     f,
		Sessions: server.NewSessions(cfg.SessionSecret, cfg.SessionTTL),
		Checks:   health.Funcs(b.Checks),
		SPADir:   cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// bootstrap creates the organizer account and fills an empty store with
// the configured catalog and demo teams.
func bootstrap(ctx context.Context, cfg *config.Config, b *store.Backends, logger *slog.Logger) error {
	created, err := b.Admin.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	if created {
		logger.Info("created admin account", "email", cfg.AdminEmail)
	}
	if cfg.SessionSecret == "change-me" {
		logger.Warn("SESSION_SECRET is the default; team tokens can be forged")
	}

	catalog, ok := grandjeu.CatalogByName(cfg.SeedCatalog)
	if !ok {
		return nil
	}
	var teams []grandjeu.DemoTeam
	if cfg.SeedTeams {
		teams = grandjeu.DemoTeams
	}
	if err := grandjeu.Seed(ctx, b.Repo, catalog, teams, time.Now().UTC()); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	logger.Info("store ready", "catalog", cfg.SeedCatalog)
	return nil
}
