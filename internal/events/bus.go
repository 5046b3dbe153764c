package events

import (
	"sync"
)

// subscriber is one registered listener and its delivery channel.
type subscriber struct {
	ch chan any
}

// TopicStats counts deliveries on one topic.
type TopicStats struct {
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
}

// Bus fans engine events out to listeners without ever blocking the
// publishing tick. A listener with a full buffer loses the message; the
// per-topic drop counter makes that visible instead of silent.
type Bus struct {
	mu        sync.RWMutex
	subs      map[Event][]*subscriber
	published map[Event]uint64
	dropped   map[Event]uint64
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{
		subs:      make(map[Event][]*subscriber),
		published: make(map[Event]uint64),
		dropped:   make(map[Event]uint64),
	}
}

// Subscribe registers a listener on a topic and returns its channel plus an
// unsubscribe function. Unsubscribing closes the channel.
func (b *Bus) Subscribe(e Event, buffer int) (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan any, buffer)}
	b.subs[e] = append(b.subs[e], sub)

	return sub.ch, func() { b.unsubscribe(e, sub) }
}

func (b *Bus) unsubscribe(e Event, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[e]
	for i, s := range subs {
		if s == sub {
			close(s.ch)
			b.subs[e] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the payload to every listener on the topic, best-effort.
func (b *Bus) Publish(e Event, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published[e]++
	for _, sub := range b.subs[e] {
		select {
		case sub.ch <- payload:
		default:
			b.dropped[e]++
		}
	}
}

// Stats snapshots publish and drop counts for every topic that has seen at
// least one publish.
func (b *Bus) Stats() map[Event]TopicStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[Event]TopicStats, len(b.published))
	for e, n := range b.published {
		out[e] = TopicStats{Published: n, Dropped: b.dropped[e]}
	}
	return out
}

// SubscriberCount reports the number of listeners on a topic.
func (b *Bus) SubscriberCount(e Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[e])
}
