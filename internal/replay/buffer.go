package replay

import (
	"math/rand"
	"time"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
)

// PriorityEpsilon keeps every stored experience at a strictly positive
// sampling weight. An entry with zero priority would never be drawn again.
const PriorityEpsilon = 0.001

// DefaultCapacity matches the size the tables were tuned against.
const DefaultCapacity = 1000

// Experience is one training tuple. Owned exclusively by the buffer. Brain
// records which table the tuple was generated against so replay updates and
// validation error are computed on the right Q-table.
type Experience struct {
	State     features.StateID
	Action    brain.ActionID
	Reward    float64
	NextState features.StateID
	Terminal  bool
	Priority  float64
	Brain     brain.Kind
}

// Buffer is a fixed-capacity circular store with priority-weighted sampling.
// Oldest entries are overwritten once full (FIFO eviction). No internal
// locking: the owning engine core serializes access.
type Buffer struct {
	entries  []Experience
	capacity int
	cursor   int
	count    int
	rng      *rand.Rand
}

// New creates a buffer with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Buffer {
	return NewWithRand(capacity, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a buffer with a deterministic random source for tests.
func NewWithRand(capacity int, rng *rand.Rand) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]Experience, capacity),
		capacity: capacity,
		rng:      rng,
	}
}

func (b *Buffer) Len() int      { return b.count }
func (b *Buffer) Capacity() int { return b.capacity }

// Store inserts an experience at the write cursor, evicting the oldest entry
// once the buffer is full. Priority is floored to stay positive.
func (b *Buffer) Store(e Experience) {
	if e.Priority < PriorityEpsilon {
		e.Priority = PriorityEpsilon
	}
	b.entries[b.cursor] = e
	b.cursor = (b.cursor + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// StoreTD is a convenience wrapper storing with priority |tdError| + epsilon.
func (b *Buffer) StoreTD(kind brain.Kind, state features.StateID, action brain.ActionID, reward float64, next features.StateID, terminal bool, tdError float64) {
	if tdError < 0 {
		tdError = -tdError
	}
	b.Store(Experience{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: next,
		Terminal:  terminal,
		Priority:  tdError + PriorityEpsilon,
		Brain:     kind,
	})
}

// Get returns the experience at a live slot index (0 <= idx < Len).
func (b *Buffer) Get(idx int) Experience {
	return b.entries[idx]
}

// RefreshPriority re-prices a sampled entry after learning from it.
func (b *Buffer) RefreshPriority(idx int, tdError float64) {
	if idx < 0 || idx >= b.count {
		return
	}
	if tdError < 0 {
		tdError = -tdError
	}
	b.entries[idx].Priority = tdError + PriorityEpsilon
}

// Sample draws batchSize slot indices with probability proportional to
// priority (roulette-wheel selection over the entire live buffer). The total
// priority is recomputed from scratch each pass; entries may repeat.
func (b *Buffer) Sample(batchSize int) []int {
	if b.count == 0 || batchSize <= 0 {
		return nil
	}

	total := 0.0
	for i := 0; i < b.count; i++ {
		total += b.entries[i].Priority
	}
	if total <= 0 {
		return nil
	}

	out := make([]int, 0, batchSize)
	for n := 0; n < batchSize; n++ {
		draw := b.rng.Float64() * total
		acc := 0.0
		pick := b.count - 1
		for i := 0; i < b.count; i++ {
			acc += b.entries[i].Priority
			if acc > draw {
				pick = i
				break
			}
		}
		out = append(out, pick)
	}
	return out
}

// Ordered returns the live entries oldest-first. Used by the overfit
// detector, which splits by insertion order.
func (b *Buffer) Ordered() []Experience {
	out := make([]Experience, 0, b.count)
	if b.count < b.capacity {
		out = append(out, b.entries[:b.count]...)
		return out
	}
	out = append(out, b.entries[b.cursor:]...)
	out = append(out, b.entries[:b.cursor]...)
	return out
}

// PruneOldest drops the oldest fraction of the buffer (overfit mitigation).
func (b *Buffer) PruneOldest(fraction float64) int {
	if fraction <= 0 || b.count == 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	drop := int(float64(b.count) * fraction)
	if drop == 0 {
		return 0
	}

	kept := b.Ordered()[drop:]
	b.entries = make([]Experience, b.capacity)
	copy(b.entries, kept)
	b.count = len(kept)
	b.cursor = b.count % b.capacity
	return drop
}
