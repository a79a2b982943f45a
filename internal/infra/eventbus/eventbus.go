// Package eventbus provides a minimal in-process pub/sub bus.
// The executor publishes one event per completed workflow step; the SSE
// handler subscribes to stream them. Publish never blocks: slow consumers
// miss events rather than stalling a run.
package eventbus

import "sync"

// Event is a single bus message.
type Event struct {
	Topic   string
	Payload any
}

// Bus is a topic-keyed fanout. The zero value is not usable; call New.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]chan Event)}
}

// Subscribe returns a buffered channel receiving events for topic.
// Callers must Unsubscribe when done or the channel leaks.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from topic and closes it.
func (b *Bus) Unsubscribe(topic string, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	for i, sub := range list {
		if sub == ch {
			b.subs[topic] = append(list[:i], list[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish delivers an event to all current subscribers of topic.
// Delivery is non-blocking: a subscriber with a full buffer drops the event.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
			// subscriber buffer full, drop
		}
	}
}
