package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// testRepository runs the same behavior checks against any backend.
func testRepository(t *testing.T, repo grandjeu.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("challenges", func(t *testing.T) {
		for _, c := range grandjeu.PathfinderCatalog[:3] {
			if err := repo.PutChallenge(ctx, c); err != nil {
				t.Fatalf("PutChallenge %d: %v", c.ID, err)
			}
		}

		got, err := repo.GetChallenge(ctx, 2)
		if err != nil {
			t.Fatalf("GetChallenge: %v", err)
		}
		if got != grandjeu.PathfinderCatalog[1] {
			t.Errorf("GetChallenge = %+v, want %+v", got, grandjeu.PathfinderCatalog[1])
		}

		list, err := repo.ListChallenges(ctx)
		if err != nil {
			t.Fatalf("ListChallenges: %v", err)
		}
		if len(list) != 3 || list[0].ID != 1 || list[2].ID != 3 {
			t.Fatalf("ListChallenges = %+v", list)
		}

		updated := grandjeu.PathfinderCatalog[1]
		updated.Points = 250
		if err := repo.PutChallenge(ctx, updated); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, _ = repo.GetChallenge(ctx, 2)
		if got.Points != 250 {
			t.Errorf("points after overwrite = %d, want 250", got.Points)
		}

		taken := grandjeu.PathfinderCatalog[0]
		taken.Title = "Overwritten"
		if err := grandjeu.CreateChallenge(ctx, repo, taken); !errors.Is(err, grandjeu.ErrDuplicateChallenge) {
			t.Errorf("create on a taken ID: err = %v, want ErrDuplicateChallenge", err)
		}
		if got, _ := repo.GetChallenge(ctx, 1); got.Title != grandjeu.PathfinderCatalog[0].Title {
			t.Errorf("title after refused create = %q", got.Title)
		}

		if err := repo.DeleteChallenge(ctx, 3); err != nil {
			t.Fatalf("DeleteChallenge: %v", err)
		}
		if _, err := repo.GetChallenge(ctx, 3); !errors.Is(err, grandjeu.ErrNotFound) {
			t.Errorf("get deleted: err = %v, want ErrNotFound", err)
		}
		if err := repo.DeleteChallenge(ctx, 3); !errors.Is(err, grandjeu.ErrNotFound) {
			t.Errorf("delete twice: err = %v, want ErrNotFound", err)
		}

		if err := grandjeu.CreateChallenge(ctx, repo, grandjeu.PathfinderCatalog[2]); err != nil {
			t.Fatalf("create on a free ID: %v", err)
		}
		if got, err := repo.GetChallenge(ctx, 3); err != nil || got != grandjeu.PathfinderCatalog[2] {
			t.Errorf("created challenge = %+v, %v", got, err)
		}
	})

	t.Run("teams", func(t *testing.T) {
		catalog, err := repo.ListChallenges(ctx)
		if err != nil {
			t.Fatalf("ListChallenges: %v", err)
		}

		a := grandjeu.NewTeam("team-a", "Les Pionniers", "pionniers@club.mg", "hash", catalog, testNow)
		b := grandjeu.NewTeam("team-b", "Les Aventuriers", "", "hash", catalog, testNow)
		for _, team := range []grandjeu.Team{a, b} {
			if err := repo.PutTeam(ctx, team); err != nil {
				t.Fatalf("PutTeam: %v", err)
			}
		}

		got, err := repo.GetTeam(ctx, "team-a")
		if err != nil {
			t.Fatalf("GetTeam: %v", err)
		}
		if got.Name != a.Name || got.Email != a.Email || got.CurrentTop != 1 || len(got.Progress) != len(catalog) {
			t.Errorf("GetTeam = %+v", got)
		}
		if !got.CreatedAt.Equal(testNow) {
			t.Errorf("createdAt = %v, want %v", got.CreatedAt, testNow)
		}

		list, err := repo.ListTeams(ctx)
		if err != nil {
			t.Fatalf("ListTeams: %v", err)
		}
		if len(list) != 2 || list[0].Name != "Les Aventuriers" {
			t.Fatalf("ListTeams = %+v", list)
		}

		ch, _ := catalog.Find(1)
		updated, err := grandjeu.UpdateTeam(ctx, repo, "team-a", func(team *grandjeu.Team) (bool, error) {
			out, err := team.SubmitCode(catalog, ch, "faneva", testNow)
			return out.Changed, err
		})
		if err != nil {
			t.Fatalf("UpdateTeam: %v", err)
		}
		if !updated.ProgressOf(1).CodeEntered {
			t.Error("UpdateTeam result missing code entry")
		}
		stored, _ := repo.GetTeam(ctx, "team-a")
		if !stored.ProgressOf(1).CodeEntered {
			t.Error("code entry not persisted")
		}

		_, err = grandjeu.UpdateTeam(ctx, repo, "team-a", func(team *grandjeu.Team) (bool, error) {
			out, err := team.SubmitAnswer(catalog, ch, "wrong", testNow)
			return out.Changed, err
		})
		if !errors.Is(err, grandjeu.ErrIncorrectAnswer) {
			t.Errorf("wrong answer: err = %v, want ErrIncorrectAnswer", err)
		}

		_, err = grandjeu.UpdateTeam(ctx, repo, "team-a", func(team *grandjeu.Team) (bool, error) {
			out, err := team.SubmitAnswer(catalog, ch, "khaki", testNow)
			return out.Changed, err
		})
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		stored, _ = repo.GetTeam(ctx, "team-a")
		if stored.Score != grandjeu.DefaultPoints || stored.CurrentTop != 2 || len(stored.CompletedTops) != 1 {
			t.Errorf("stored after completion = %+v", stored)
		}

		if _, err := grandjeu.UpdateTeam(ctx, repo, "missing", func(*grandjeu.Team) (bool, error) {
			return true, nil
		}); !errors.Is(err, grandjeu.ErrNotFound) {
			t.Errorf("update missing: err = %v, want ErrNotFound", err)
		}

		if err := repo.DeleteTeam(ctx, "team-b"); err != nil {
			t.Fatalf("DeleteTeam: %v", err)
		}
		if _, err := repo.GetTeam(ctx, "team-b"); !errors.Is(err, grandjeu.ErrNotFound) {
			t.Errorf("get deleted: err = %v, want ErrNotFound", err)
		}
		if err := repo.DeleteTeam(ctx, "team-b"); !errors.Is(err, grandjeu.ErrNotFound) {
			t.Errorf("delete twice: err = %v, want ErrNotFound", err)
		}
	})
}
