// Package feed delivers team snapshots to live subscribers. Each subscriber
// only ever holds the latest event: a slow reader skips intermediate
// versions instead of blocking publishers.
package feed

import (
	"context"
	"encoding/json"
)

// Event types.
const (
	TypeProgress = "progress"
	TypeReset    = "reset"
	TypeDeleted  = "deleted"
	TypeCatalog  = "catalog"
)

// Event announces a new version of a team record. Payload is the public
// snapshot the subscriber should replace its copy with.
type Event struct {
	Type    string          `json:"type"`
	TeamID  string          `json:"teamId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Feed is a publish/subscribe channel keyed by team. Subscribing with an
// empty team ID receives every team's events. The returned channel closes
// when ctx is done.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, teamID string) (<-chan Event, error)
}

// offer puts ev in a one-slot channel, discarding whatever stale event is
// still waiting there.
func offer(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
