// Package events broadcasts inventory store state changes to subscribers.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/micro-nova/inventory-go/internal/models"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe bus of store states.
// When a subscriber's buffer is full the oldest pending state is discarded so
// the most recent state is always delivered.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan models.State
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan models.State),
	}
}

// Subscribe registers a new subscriber and returns its id together with the
// channel that receives states. Call Unsubscribe with the id when done.
func (b *Bus) Subscribe() (string, <-chan models.State) {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan models.State, subBufferSize)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends a copy of state to all subscribers without blocking.
func (b *Bus) Publish(state models.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		st := state.DeepCopy()
		select {
		case ch <- st:
			continue
		default:
		}
		// Full: drop the oldest queued state and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// Close unsubscribes everyone.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
