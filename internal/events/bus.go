package events

import (
	"sync"
)

// Bus is a lightweight pub/sub broker using channels.
type Bus struct {
	mu   sync.RWMutex
	subs map[Event][]chan Message
}

// Message pairs a payload with the topic it was published on, so a subscriber
// listening on several topics can tell them apart.
type Message struct {
	Event   Event
	Payload any
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Event][]chan Message)}
}

// Subscribe registers a listener for one or more topics and returns the
// channel and an unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe(buffer int, topics ...Event) (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, buffer)
	for _, e := range topics {
		b.subs[e] = append(b.subs[e], ch)
	}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, e := range topics {
			subs := b.subs[e]
			for i, c := range subs {
				if c == ch {
					b.subs[e] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
		}
		close(ch)
	}

	return ch, unsub
}

// Publish fan-outs the payload to subscribers without blocking: a slow
// subscriber's message is dropped rather than stalling the publisher.
func (b *Bus) Publish(e Event, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[e] {
		select {
		case ch <- Message{Event: e, Payload: payload}:
		default:
		}
	}
}
