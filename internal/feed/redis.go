package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisFeed fans events out through Redis pub/sub so every server process
// sees every write. Channels are named <prefix>:team:<id>.
type RedisFeed struct {
	rdb    redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewRedisFeed(rdb redis.UniversalClient, prefix string, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{rdb: rdb, prefix: prefix, logger: logger}
}

func (f *RedisFeed) channel(teamID string) string {
	return f.prefix + ":team:" + teamID
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := f.rdb.Publish(ctx, f.channel(ev.TeamID), data).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, teamID string) (<-chan Event, error) {
	var ps *redis.PubSub
	if teamID == "" {
		ps = f.rdb.PSubscribe(ctx, f.channel("*"))
	} else {
		ps = f.rdb.Subscribe(ctx, f.channel(teamID))
	}
	// Wait for the confirmation so nothing published after we return is
	// missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribing: %w", err)
	}

	out := make(chan Event, 1)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.logger.Warn("dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				offer(out, ev)
			}
		}
	}()
	return out, nil
}

var _ Feed = (*RedisFeed)(nil)
