package service

import "sync"

// EventKind classifies engine change notifications.
type EventKind string

const (
	EventVoteSettled   EventKind = "vote_settled"
	EventWindowChanged EventKind = "window_changed"
)

// Event is a change notification for one race.
type Event struct {
	Kind     EventKind
	Club     string
	Position string
}

// Bus is a small in-process pub/sub used to fan out race changes to
// subscribers (tally refresh worker, future websocket pushers). Publishing
// never blocks; events are dropped for subscribers that fall behind.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a buffered subscriber channel. The returned cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
