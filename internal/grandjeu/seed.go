package grandjeu

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewTeamID returns an opaque team identifier.
func NewTeamID() string { return uuid.NewString() }

// Seed fills an empty repository: the catalog when no challenge exists, the
// teams when no team exists. It never touches existing records.
func Seed(ctx context.Context, repo Repository, catalog Catalog, teams []DemoTeam, now time.Time) error {
	existing, err := repo.ListChallenges(ctx)
	if err != nil {
		return fmt.Errorf("listing challenges: %w", err)
	}
	if len(existing) == 0 {
		for _, c := range catalog {
			if err := repo.PutChallenge(ctx, c); err != nil {
				return fmt.Errorf("seeding challenge %d: %w", c.ID, err)
			}
		}
		existing = catalog
	}

	current, err := repo.ListTeams(ctx)
	if err != nil {
		return fmt.Errorf("listing teams: %w", err)
	}
	if len(current) > 0 {
		return nil
	}
	for _, d := range teams {
		hash, err := HashPassword(d.Password)
		if err != nil {
			return err
		}
		t := NewTeam(NewTeamID(), d.Name, "", hash, existing, now)
		if err := repo.PutTeam(ctx, t); err != nil {
			return fmt.Errorf("seeding team %q: %w", d.Name, err)
		}
	}
	return nil
}
