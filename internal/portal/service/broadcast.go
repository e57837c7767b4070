package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/codearena/portal/internal/portal/types"
)

// subscriberBuffer bounds each subscriber's channel.  A consumer that falls
// this far behind starts losing events; delivery is best-effort and the
// authoritative log is always available via query/export.
const subscriberBuffer = 16

// Broadcaster fans newly logged violations out to live admin viewers.
// Subscribers are registered explicitly and keyed by an opaque id so each
// connection's lifecycle is accounted for; there is no replay buffer.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]chan types.Violation
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]chan types.Violation)}
}

// Subscribe registers a new viewer and returns its id and receive channel.
// The caller must Unsubscribe with the same id when the connection ends.
func (b *Broadcaster) Subscribe() (string, <-chan types.Violation) {
	id := uuid.NewString()
	ch := make(chan types.Violation, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[id] = ch
	return id, ch
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers v to every current subscriber without blocking.  A
// subscriber whose buffer is full misses the event.
func (b *Broadcaster) Publish(v types.Violation) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// SubscriberCount reports the number of registered subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
