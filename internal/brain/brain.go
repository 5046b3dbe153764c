package brain

import (
	"math"
	"math/rand"
	"time"

	"adaptive-core/internal/features"
)

// Exploration and credit-assignment constants. Changing these invalidates
// previously trained tables, so they are not configuration knobs.
const (
	EpsilonStart     = 0.20
	EpsilonFloor     = 0.02
	EpsilonDecay     = 0.995
	CuriosityEpsilon = 0.30
	TraceCutoff      = 0.01
)

// Brain is one independently trained action-value table with eligibility
// traces and accuracy bookkeeping. It has no internal locking: the owning
// engine core serializes all access (one logical tick at a time).
type Brain struct {
	kind        Kind
	q           [features.NumStates][NumActions]float64
	trace       [features.NumStates][NumActions]float64
	accuracy    float64
	tradeCount  int64
	initialized bool
	epsilon     float64
	rng         *rand.Rand
}

// New creates a fresh brain with exploration at its starting rate.
func New(kind Kind) *Brain {
	return NewWithRand(kind, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a brain with a caller-supplied random source, used by
// tests that need a deterministic policy.
func NewWithRand(kind Kind, rng *rand.Rand) *Brain {
	return &Brain{
		kind: kind,
		// Accuracy starts at the neutral midpoint, like the profile's
		// spike probability. The EMA moves at most 0.01 per trade, so a
		// zero start could never clear the confidence gate's floor.
		accuracy: 0.5,
		epsilon:  EpsilonStart,
		rng:      rng,
	}
}

func (b *Brain) Kind() Kind        { return b.kind }
func (b *Brain) Accuracy() float64 { return b.accuracy }
func (b *Brain) TradeCount() int64 { return b.tradeCount }
func (b *Brain) Epsilon() float64  { return b.epsilon }
func (b *Brain) Initialized() bool { return b.initialized }

// SelectAction picks an action for the state with an epsilon-greedy policy.
// Ties between equal Q values break toward the lowest action index.
func (b *Brain) SelectAction(state features.StateID) ActionID {
	s := clampState(state)
	if b.rng.Float64() < b.epsilon {
		return ActionID(b.rng.Intn(NumActions))
	}

	best := ActionID(0)
	bestQ := b.q[s][0]
	for a := 1; a < NumActions; a++ {
		if b.q[s][a] > bestQ {
			bestQ = b.q[s][a]
			best = ActionID(a)
		}
	}
	return best
}

// QValue returns the current estimate for a state/action pair.
func (b *Brain) QValue(state features.StateID, action ActionID) float64 {
	if !action.Valid() {
		return 0
	}
	return b.q[clampState(state)][action]
}

// MaxQ returns the best estimate available at a state.
func (b *Brain) MaxQ(state features.StateID) float64 {
	s := clampState(state)
	best := b.q[s][0]
	for a := 1; a < NumActions; a++ {
		if b.q[s][a] > best {
			best = b.q[s][a]
		}
	}
	return best
}

// Update applies a standard one-step Q-learning backup and returns the
// absolute temporal-difference error (the replay buffer uses it as priority).
func (b *Brain) Update(state features.StateID, action ActionID, reward float64, next features.StateID, terminal bool, alpha, gamma float64) float64 {
	if !action.Valid() {
		return 0
	}
	s := clampState(state)

	target := reward
	if !terminal {
		target = reward + gamma*b.MaxQ(next)
	}
	td := target - b.q[s][action]
	b.q[s][action] += alpha * td
	b.initialized = true
	return math.Abs(td)
}

// CreditTrade spreads a terminal trade outcome across recently visited
// state/action pairs using Watkins' Q(lambda). Trade closure is a single
// terminal credit event: no next-state bootstrap is chained here.
func (b *Brain) CreditTrade(state features.StateID, action ActionID, reward float64, alpha, gamma, lambda float64) {
	if !action.Valid() {
		return
	}
	s := clampState(state)

	b.trace[s][action] += 1
	delta := reward - b.q[s][action]

	decay := gamma * lambda
	for si := 0; si < features.NumStates; si++ {
		for ai := 0; ai < NumActions; ai++ {
			e := b.trace[si][ai]
			if e <= TraceCutoff {
				continue
			}
			b.q[si][ai] += alpha * delta * e
			b.trace[si][ai] = e * decay
		}
	}
	b.initialized = true
}

// RecordOutcome folds a realized trade result into the accuracy EMA.
func (b *Brain) RecordOutcome(profit float64) {
	b.accuracy = b.accuracy * 0.99
	if profit > 0 {
		b.accuracy += 0.01
	}
	b.tradeCount++
}

// DecayEpsilon advances exploration decay by one adaptation step.
func (b *Brain) DecayEpsilon() {
	b.epsilon *= EpsilonDecay
	if b.epsilon < EpsilonFloor {
		b.epsilon = EpsilonFloor
	}
}

// BoostCuriosity forces exploration back up for one step after a market
// regime change. This is a deliberate exploration restart, not an anomaly.
func (b *Brain) BoostCuriosity() {
	if b.epsilon < CuriosityEpsilon {
		b.epsilon = CuriosityEpsilon
	}
}

// Snapshot is the serializable state of a brain.
type Snapshot struct {
	Q           [features.NumStates][NumActions]float64
	Trace       [features.NumStates][NumActions]float64
	Accuracy    float64
	TradeCount  int64
	Initialized bool
}

// Export copies the learned state out for persistence.
func (b *Brain) Export() *Snapshot {
	return &Snapshot{
		Q:           b.q,
		Trace:       b.trace,
		Accuracy:    b.accuracy,
		TradeCount:  b.tradeCount,
		Initialized: b.initialized,
	}
}

// Restore replaces the learned state from a persisted snapshot.
func (b *Brain) Restore(s *Snapshot) {
	b.q = s.Q
	b.trace = s.Trace
	b.accuracy = s.Accuracy
	b.tradeCount = s.TradeCount
	b.initialized = s.Initialized
}

func clampState(state features.StateID) int {
	s := int(state)
	if s < 0 {
		return 0
	}
	if s >= features.NumStates {
		return features.NumStates - 1
	}
	return s
}
