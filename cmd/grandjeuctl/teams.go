package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/playperu/grandjeu/internal/feed"
	"github.com/playperu/grandjeu/internal/grandjeu"
)

type teamRow struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	CurrentTop    int       `json:"currentTop"`
	CompletedTops []int     `json:"completedTops"`
	Score         int       `json:"score"`
	Attempts      int       `json:"attempts"`
	LastActivity  time.Time `json:"lastActivity"`
}

func newTeamsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List or reset teams",
	}
	cmd.AddCommand(newTeamsListCmd(a), newTeamsResetCmd(a))
	return cmd
}

func newTeamsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every team with its progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			teams, err := a.b.Repo.ListTeams(cmd.Context())
			if err != nil {
				return err
			}

			if a.flags.json {
				out := make([]teamRow, 0, len(teams))
				for _, t := range teams {
					out = append(out, teamRow{
						ID:            t.ID,
						Name:          t.Name,
						Email:         t.Email,
						CurrentTop:    t.CurrentTop,
						CompletedTops: t.CompletedTops,
						Score:         t.Score,
						Attempts:      t.Attempts,
						LastActivity:  t.LastActivity,
					})
				}
				return a.printJSON(out)
			}

			rows := make([][]string, 0, len(teams))
			for _, t := range teams {
				rows = append(rows, []string{
					t.ID,
					t.Name,
					t.Email,
					strconv.Itoa(t.CurrentTop),
					strconv.Itoa(len(t.CompletedTops)),
					strconv.Itoa(t.Score),
					strconv.Itoa(t.Attempts),
					t.LastActivity.Local().Format(time.DateTime),
				})
			}
			a.printTable([]string{"ID", "Team", "Email", "Top", "Done", "Score", "Attempts", "Last activity"}, rows)
			return nil
		},
	}
}

func newTeamsResetCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [team-id...]",
		Short: "Put teams back at the first challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if all == (len(args) > 0) {
				return errors.New("give either team IDs or --all")
			}

			ids := args
			if all {
				teams, err := a.b.Repo.ListTeams(ctx)
				if err != nil {
					return err
				}
				for _, t := range teams {
					ids = append(ids, t.ID)
				}
			}

			catalog, err := a.b.Repo.ListChallenges(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				t, err := grandjeu.UpdateTeam(ctx, a.b.Repo, id, func(t *grandjeu.Team) (bool, error) {
					t.Reset(catalog, time.Now().UTC())
					return true, nil
				})
				if err != nil {
					return fmt.Errorf("resetting %s: %w", id, err)
				}
				a.publish(ctx, feed.TypeReset, t.ID)
				fmt.Fprintf(a.out, "reset %s (%s)\n", t.Name, t.ID)
			}
			fmt.Fprintf(a.out, "%d team(s) reset\n", len(ids))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "reset every team")
	return cmd
}
