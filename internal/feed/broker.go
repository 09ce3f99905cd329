package feed

import (
	"context"
	"sync"
)

// Broker is an in-process Feed.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

func (b *Broker) Subscribe(ctx context.Context, teamID string) (<-chan Event, error) {
	ch := make(chan Event, 1)
	b.mu.Lock()
	if b.subs[teamID] == nil {
		b.subs[teamID] = make(map[chan Event]struct{})
	}
	b.subs[teamID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(teamID, ch)
	}()
	return ch, nil
}

func (b *Broker) unsubscribe(teamID string, ch chan Event) {
	b.mu.Lock()
	delete(b.subs[teamID], ch)
	if len(b.subs[teamID]) == 0 {
		delete(b.subs, teamID)
	}
	close(ch)
	b.mu.Unlock()
}

// Publish delivers ev to the team's subscribers and to the all-teams
// subscribers.
func (b *Broker) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.TeamID] {
		offer(ch, ev)
	}
	if ev.TeamID != "" {
		for ch := range b.subs[""] {
			offer(ch, ev)
		}
	}
	return nil
}

// Subscribers counts open subscriptions for a team.
func (b *Broker) Subscribers(teamID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[teamID])
}

var _ Feed = (*Broker)(nil)
