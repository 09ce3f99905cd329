package grandjeu

import (
	"context"
	"errors"
	"sort"
)

// TeamRepository persists whole team documents. Put overwrites.
type TeamRepository interface {
	GetTeam(ctx context.Context, id string) (Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	PutTeam(ctx context.Context, t Team) error
	DeleteTeam(ctx context.Context, id string) error
}

// ChallengeRepository persists the challenge catalog, one record per level.
type ChallengeRepository interface {
	GetChallenge(ctx context.Context, id int) (Challenge, error)
	ListChallenges(ctx context.Context) (Catalog, error)
	PutChallenge(ctx context.Context, c Challenge) error
	DeleteChallenge(ctx context.Context, id int) error
}

// Repository is what the game needs from a backend.
type Repository interface {
	TeamRepository
	ChallengeRepository
}

// TeamMutation changes a team in place. The record is written back when
// changed is true, whatever err says.
type TeamMutation func(t *Team) (changed bool, err error)

// TeamUpdater is implemented by backends that can load, mutate and store a
// team in one transaction.
type TeamUpdater interface {
	UpdateTeam(ctx context.Context, id string, fn TeamMutation) (Team, error)
}

// ChallengeCreator is implemented by backends that can insert a challenge
// only when its ID is free.
type ChallengeCreator interface {
	CreateChallenge(ctx context.Context, c Challenge) error
}

// CreateChallenge stores a new challenge without overwriting an existing
// one; a taken ID yields ErrDuplicateChallenge.
func CreateChallenge(ctx context.Context, repo ChallengeRepository, c Challenge) error {
	if cc, ok := repo.(ChallengeCreator); ok {
		return cc.CreateChallenge(ctx, c)
	}
	_, err := repo.GetChallenge(ctx, c.ID)
	switch {
	case err == nil:
		return ErrDuplicateChallenge
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return repo.PutChallenge(ctx, c)
}

// UpdateTeam applies fn to the stored team and writes it back. Backends
// without transactions get a plain read then overwrite; the last writer wins.
func UpdateTeam(ctx context.Context, repo TeamRepository, id string, fn TeamMutation) (Team, error) {
	if u, ok := repo.(TeamUpdater); ok {
		return u.UpdateTeam(ctx, id, fn)
	}
	t, err := repo.GetTeam(ctx, id)
	if err != nil {
		return Team{}, err
	}
	changed, ferr := fn(&t)
	if changed {
		if err := repo.PutTeam(ctx, t); err != nil {
			return t, err
		}
	}
	return t, ferr
}

// FindTeamByLogin returns the team whose name or email matches login,
// ignoring case.
func FindTeamByLogin(ctx context.Context, repo TeamRepository, login string) (Team, error) {
	teams, err := repo.ListTeams(ctx)
	if err != nil {
		return Team{}, err
	}
	key := NormalizeAnswer(login)
	for _, t := range teams {
		if NormalizeAnswer(t.Name) == key || (t.Email != "" && NormalizeAnswer(t.Email) == key) {
			return t, nil
		}
	}
	return Team{}, ErrNotFound
}

// SortTeams orders teams by name, the listing order of the admin surface.
func SortTeams(teams []Team) {
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Name != teams[j].Name {
			return teams[i].Name < teams[j].Name
		}
		return teams[i].ID < teams[j].ID
	})
}
