package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

const maxTxRetries = 5

// RedisStore keeps each record kind in one hash under a fixed key
// (<prefix>:teams, <prefix>:challenges), one JSON field per record.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(kind string) string { return s.prefix + ":" + kind }

func (s *RedisStore) hget(ctx context.Context, kind, field string, dest any) error {
	raw, err := s.rdb.HGet(ctx, s.key(kind), field).Result()
	if errors.Is(err, redis.Nil) {
		return grandjeu.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", kind, field, err)
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (s *RedisStore) hset(ctx context.Context, kind, field string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, s.key(kind), field, data).Err(); err != nil {
		return grandjeu.PersistenceError("writing "+kind, err)
	}
	return nil
}

func (s *RedisStore) hdel(ctx context.Context, kind, field string) error {
	n, err := s.rdb.HDel(ctx, s.key(kind), field).Result()
	if err != nil {
		return grandjeu.PersistenceError("deleting "+kind, err)
	}
	if n == 0 {
		return grandjeu.ErrNotFound
	}
	return nil
}

func hvals[T any](ctx context.Context, rdb redis.UniversalClient, key string) ([]T, error) {
	raws, err := rdb.HVals(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *RedisStore) GetTeam(ctx context.Context, id string) (grandjeu.Team, error) {
	var t grandjeu.Team
	if err := s.hget(ctx, "teams", id, &t); err != nil {
		return grandjeu.Team{}, err
	}
	return t, nil
}

func (s *RedisStore) ListTeams(ctx context.Context) ([]grandjeu.Team, error) {
	teams, err := hvals[grandjeu.Team](ctx, s.rdb, s.key("teams"))
	if err != nil {
		return nil, err
	}
	grandjeu.SortTeams(teams)
	return teams, nil
}

func (s *RedisStore) PutTeam(ctx context.Context, t grandjeu.Team) error {
	return s.hset(ctx, "teams", t.ID, t)
}

func (s *RedisStore) DeleteTeam(ctx context.Context, id string) error {
	return s.hdel(ctx, "teams", id)
}

// UpdateTeam applies fn under WATCH on the teams hash and retries when
// another writer got in first.
func (s *RedisStore) UpdateTeam(ctx context.Context, id string, fn grandjeu.TeamMutation) (grandjeu.Team, error) {
	key := s.key("teams")

	var (
		t    grandjeu.Team
		ferr error
	)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Result()
		if errors.Is(err, redis.Nil) {
			return grandjeu.ErrNotFound
		}
		if err != nil {
			return err
		}
		t = grandjeu.Team{}
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return err
		}

		var changed bool
		changed, ferr = fn(&t)
		if !changed {
			return nil
		}
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, data)
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := s.rdb.Watch(ctx, txf, key)
		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, grandjeu.ErrNotFound):
			return grandjeu.Team{}, err
		case err != nil:
			return t, grandjeu.PersistenceError("updating team", err)
		}
		return t, ferr
	}
	return t, grandjeu.PersistenceError("updating team", redis.TxFailedErr)
}

func (s *RedisStore) GetChallenge(ctx context.Context, id int) (grandjeu.Challenge, error) {
	var c grandjeu.Challenge
	if err := s.hget(ctx, "challenges", strconv.Itoa(id), &c); err != nil {
		return grandjeu.Challenge{}, err
	}
	return c, nil
}

func (s *RedisStore) ListChallenges(ctx context.Context) (grandjeu.Catalog, error) {
	cs, err := hvals[grandjeu.Challenge](ctx, s.rdb, s.key("challenges"))
	if err != nil {
		return nil, err
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return grandjeu.Catalog(cs), nil
}

func (s *RedisStore) PutChallenge(ctx context.Context, c grandjeu.Challenge) error {
	return s.hset(ctx, "challenges", strconv.Itoa(c.ID), c)
}

// CreateChallenge sets the challenge field with HSETNX so an existing ID is
// never overwritten.
func (s *RedisStore) CreateChallenge(ctx context.Context, c grandjeu.Challenge) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := s.rdb.HSetNX(ctx, s.key("challenges"), strconv.Itoa(c.ID), data).Result()
	if err != nil {
		return grandjeu.PersistenceError("creating challenge", err)
	}
	if !ok {
		return grandjeu.ErrDuplicateChallenge
	}
	return nil
}

func (s *RedisStore) DeleteChallenge(ctx context.Context, id int) error {
	return s.hdel(ctx, "challenges", strconv.Itoa(id))
}

var (
	_ grandjeu.Repository       = (*RedisStore)(nil)
	_ grandjeu.TeamUpdater      = (*RedisStore)(nil)
	_ grandjeu.ChallengeCreator = (*RedisStore)(nil)
)
