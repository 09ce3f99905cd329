package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank teams by score, then fewer attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			teams, err := a.b.Repo.ListTeams(ctx)
			if err != nil {
				return err
			}
			catalog, err := a.b.Repo.ListChallenges(ctx)
			if err != nil {
				return err
			}

			lb := grandjeu.Rank(teams, catalog)
			if a.flags.json {
				return a.printJSON(lb)
			}

			rows := make([][]string, 0, len(lb.Standings))
			for _, s := range lb.Standings {
				rows = append(rows, []string{
					strconv.Itoa(s.Rank),
					s.Name,
					strconv.Itoa(s.Score),
					fmt.Sprintf("%d/%d", s.Completed, lb.Challenges),
					strconv.Itoa(s.Attempts),
					yesNo(s.Finished),
				})
			}
			a.printTable([]string{"#", "Team", "Score", "Done", "Attempts", "Finished"}, rows)
			fmt.Fprintf(a.out, "%d team(s), %d points scored\n", lb.Teams, lb.TotalScore)
			return nil
		},
	}
}
