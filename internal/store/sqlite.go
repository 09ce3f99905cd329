package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// SQLiteStore keeps teams and challenges as JSONB documents, one table per
// record kind. The schema comes from package migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDoc(ctx context.Context, q querier, table string, id, dest any) error {
	var data string
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return grandjeu.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *SQLiteStore) del(ctx context.Context, table string, id any) error {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
	)
	if err != nil {
		return grandjeu.PersistenceError("deleting from "+table, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return grandjeu.ErrNotFound
	}
	return nil
}

func listDocs[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putTeam(ctx context.Context, db execer, t grandjeu.Team) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO teams (id, name, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		t.ID, t.Name, string(data),
	)
	if err != nil {
		return grandjeu.PersistenceError("writing team", err)
	}
	return nil
}

func (s *SQLiteStore) GetTeam(ctx context.Context, id string) (grandjeu.Team, error) {
	var t grandjeu.Team
	if err := getDoc(ctx, s.db, "teams", id, &t); err != nil {
		return grandjeu.Team{}, err
	}
	return t, nil
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]grandjeu.Team, error) {
	return listDocs[grandjeu.Team](ctx, s.db, `SELECT json(data) FROM teams ORDER BY name, id`)
}

func (s *SQLiteStore) PutTeam(ctx context.Context, t grandjeu.Team) error {
	return putTeam(ctx, s.db, t)
}

func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	return s.del(ctx, "teams", id)
}

// UpdateTeam loads a team, applies fn, and saves it in a transaction.
func (s *SQLiteStore) UpdateTeam(ctx context.Context, id string, fn grandjeu.TeamMutation) (grandjeu.Team, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return grandjeu.Team{}, err
	}
	defer tx.Rollback()

	var t grandjeu.Team
	if err := getDoc(ctx, tx, "teams", id, &t); err != nil {
		return grandjeu.Team{}, err
	}

	changed, ferr := fn(&t)
	if !changed {
		return t, ferr
	}
	if err := putTeam(ctx, tx, t); err != nil {
		return t, err
	}
	if err := tx.Commit(); err != nil {
		return t, grandjeu.PersistenceError("committing team", err)
	}
	return t, ferr
}

func (s *SQLiteStore) GetChallenge(ctx context.Context, id int) (grandjeu.Challenge, error) {
	var c grandjeu.Challenge
	if err := getDoc(ctx, s.db, "challenges", id, &c); err != nil {
		return grandjeu.Challenge{}, err
	}
	return c, nil
}

func (s *SQLiteStore) ListChallenges(ctx context.Context) (grandjeu.Catalog, error) {
	cs, err := listDocs[grandjeu.Challenge](ctx, s.db, `SELECT json(data) FROM challenges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return grandjeu.Catalog(cs), nil
}

func (s *SQLiteStore) PutChallenge(ctx context.Context, c grandjeu.Challenge) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO challenges (id, data) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		c.ID, string(data),
	)
	if err != nil {
		return grandjeu.PersistenceError("writing challenge", err)
	}
	return nil
}

// CreateChallenge inserts c unless its ID is already taken.
func (s *SQLiteStore) CreateChallenge(ctx context.Context, c grandjeu.Challenge) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO challenges (id, data) VALUES (?, jsonb(?))
		 ON CONFLICT(id) DO NOTHING`,
		c.ID, string(data),
	)
	if err != nil {
		return grandjeu.PersistenceError("creating challenge", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return grandjeu.ErrDuplicateChallenge
	}
	return nil
}

func (s *SQLiteStore) DeleteChallenge(ctx context.Context, id int) error {
	return s.del(ctx, "challenges", id)
}

var (
	_ grandjeu.Repository       = (*SQLiteStore)(nil)
	_ grandjeu.TeamUpdater      = (*SQLiteStore)(nil)
	_ grandjeu.ChallengeCreator = (*SQLiteStore)(nil)
)
