package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize bounds each subscriber queue.
const DefaultQueueSize = 64

// Bus fans published events out to per-subscriber queues. Delivery is best
// effort: a subscriber that falls behind loses its oldest events.
type Bus struct {
	mu        sync.Mutex
	subs      map[string]*Subscription
	queueSize int
	dropped   uint64
}

// NewBus creates a bus. A non-positive queueSize uses DefaultQueueSize.
func NewBus(queueSize int) *Bus {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bus{
		subs:      make(map[string]*Subscription),
		queueSize: queueSize,
	}
}

// Subscription is one consumer's queue of serialized events.
type Subscription struct {
	ID string

	bus     *Bus
	pending [][]byte
	once    sync.Once
}

// Subscribe registers a new queue. Callers must Close it when done.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		ID:  uuid.New().String(),
		bus: b,
	}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()
	return sub
}

// Publish serializes v once and appends it to every queue.
func (b *Bus) Publish(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if len(sub.pending) >= b.queueSize {
			sub.pending = sub.pending[1:]
			b.dropped++
		}
		sub.pending = append(sub.pending, data)
	}
	return nil
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many queued events were discarded for slow subscribers.
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Drain returns all pending events in publish order and empties the queue.
// The returned slices are shared between subscribers and must not be modified.
func (s *Subscription) Drain() [][]byte {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

// Close removes the subscription from the bus. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.ID)
		s.pending = nil
		s.bus.mu.Unlock()
	})
}
