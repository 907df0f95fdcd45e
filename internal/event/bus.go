// Package event provides the in-process stand-in for a backend change feed.
// Mutating operations publish change notifications; interested surfaces (the
// web UI's event stream, tests) subscribe. Correctness of the retention
// engine never depends on these events; they are advisory.
package event

import "sync"

// Op identifies the kind of change.
type Op string

const (
	OpAdded     Op = "added"
	OpCompleted Op = "completed"
	OpFailed    Op = "failed"
	OpDeleted   Op = "deleted"
	OpProtected Op = "protected"
	OpCleanup   Op = "cleanup"
	OpPolicy    Op = "policy"
)

// Change describes one mutation against the store.
type Change struct {
	Op      Op       `json:"op"`
	Library string   `json:"library"`
	IDs     []string `json:"ids,omitempty"`
	Count   int      `json:"count"`
}

// Bus fans out change notifications to subscribers.
// Publish never blocks: a subscriber that falls behind misses events rather
// than stalling the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Change]struct{})}
}

// Subscribe registers a new subscriber channel with a small buffer.
func (b *Bus) Subscribe() chan Change {
	ch := make(chan Change, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers a change to every subscriber that has buffer room.
func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
