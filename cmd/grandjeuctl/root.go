package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/playperu/grandjeu/internal/config"
	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/store"
)

const releaseVersion = "0.1.0"

// app holds what every subcommand shares once the store is open.
type app struct {
	flags struct {
		db       string
		store    string
		redisURL string
		json     bool
		verbose  bool
	}

	cfg    *config.Config
	logger *slog.Logger
	b      *store.Backends
	// feed is nil unless Redis is configured; changes made here are then
	// announced to connected players.
	feed feed.Feed
	out  io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GRANDJEU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "grandjeuctl",
		Short:         "Organizer tools for a Grand Jeu: teams, challenges and standings.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&a.flags.db, "db", "", "SQLite database path, overrides DB_PATH (env: GRANDJEU_DB)")
	fs.StringVar(&a.flags.store, "store", "", "store backend: sqlite, redis or dynamodb, overrides STORE_BACKEND (env: GRANDJEU_STORE)")
	fs.StringVar(&a.flags.redisURL, "redis-url", "", "redis URL, overrides REDIS_URL (env: GRANDJEU_REDIS_URL)")
	fs.BoolVar(&a.flags.json, "json", false, "print JSON instead of tables (env: GRANDJEU_JSON)")
	fs.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log connection details (env: GRANDJEU_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newTeamsCmd(a),
		newChallengesCmd(a),
		newLeaderboardCmd(a),
		newSeedCmd(a),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("grandjeuctl v{{.Version}}\n")

	return cmd
}

// open loads the server configuration, applies flag overrides and connects
// to the configured store.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.flags.db != "" {
		cfg.DBPath = a.flags.db
	}
	if a.flags.store != "" {
		cfg.StoreBackend = a.flags.store
	}
	if a.flags.redisURL != "" {
		cfg.RedisURL = a.flags.redisURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.out = cmd.OutOrStdout()

	b, err := store.Open(cmd.Context(), cfg, a.logger)
	if err != nil {
		return err
	}
	a.cfg, a.b = cfg, b
	if b.Redis != nil {
		a.feed = feed.NewRedisFeed(b.Redis, cfg.RedisPrefix, a.logger)
	}
	return nil
}

func (a *app) close() {
	if a.b != nil {
		a.b.Close()
	}
}

// publish tells live clients a team changed. They reload it themselves.
func (a *app) publish(ctx context.Context, typ, teamID string) {
	if a.feed == nil {
		return
	}
	if err := a.feed.Publish(ctx, feed.Event{Type: typ, TeamID: teamID}); err != nil {
		a.logger.Warn("publishing team update", "team_id", teamID, "error", err)
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
