package main

import (
	"fmt"
	"strconv"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

func newChallengesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "challenges",
		Aliases: []string{"tops"},
		Short:   "List challenges or print their QR codes",
	}
	cmd.AddCommand(newChallengesListCmd(a), newChallengesQRCmd(a))
	return cmd
}

func newChallengesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog, codes included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.b.Repo.ListChallenges(cmd.Context())
			if err != nil {
				return err
			}
			if a.flags.json {
				return a.printJSON(catalog)
			}

			rows := make([][]string, 0, len(catalog))
			for _, c := range catalog {
				kind := "code"
				if c.TwoPhase() {
					kind = "code+answer"
				}
				rows = append(rows, []string{
					strconv.Itoa(c.ID),
					c.Title,
					kind,
					c.Code,
					c.Answer,
					strconv.Itoa(c.Points),
				})
			}
			a.printTable([]string{"ID", "Title", "Kind", "Code", "Answer", "Points"}, rows)
			fmt.Fprintf(a.out, "%d challenge(s), %d points in total\n", len(catalog), catalog.Total())
			return nil
		},
	}
}

func newChallengesQRCmd(a *app) *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "qr <challenge-id>",
		Short: "Write the challenge code as a printable QR code PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid challenge id %q", args[0])
			}
			c, err := a.b.Repo.GetChallenge(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("challenge %d: %w", id, err)
			}

			if out == "" {
				out = fmt.Sprintf("top-%d.png", id)
			}
			if err := qrcode.WriteFile(c.Code, qrcode.Medium, size, out); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(a.out, "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default top-<id>.png)")
	cmd.Flags().IntVar(&size, "size", 512, "image size in pixels")
	return cmd
}
