package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		catalogName string
		demoTeams   bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and fill an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("catalog") {
				catalogName = a.cfg.SeedCatalog
			}
			if !cmd.Flags().Changed("demo-teams") {
				demoTeams = a.cfg.SeedTeams
			}

			catalog, ok := grandjeu.CatalogByName(catalogName)
			if !ok {
				return fmt.Errorf("unknown catalog %q", catalogName)
			}
			var teams []grandjeu.DemoTeam
			if demoTeams {
				teams = grandjeu.DemoTeams
			}

			if _, err := a.b.Admin.EnsureAdmin(ctx, a.cfg.AdminEmail, a.cfg.AdminPassword); err != nil {
				return err
			}
			if err := grandjeu.Seed(ctx, a.b.Repo, catalog, teams, time.Now().UTC()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "store seeded")
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", "", "catalog to load: adventist, pathfinder or none (default SEED_CATALOG)")
	cmd.Flags().BoolVar(&demoTeams, "demo-teams", false, "create the demo patrols (default SEED_TEAMS)")
	return cmd
}
