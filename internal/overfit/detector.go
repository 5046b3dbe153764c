package overfit

import (
	"adaptive-core/internal/replay"
)

const (
	// minSamples gates the check until the buffer carries enough history
	// for the split to mean anything.
	minSamples = 100
	// trainRatio splits the buffer by insertion order (oldest-first), not
	// by shuffling; validation error therefore tracks recency.
	trainRatio = 0.8
	// flagThreshold is the number of consecutive qualifying checks needed
	// before mitigation kicks in.
	flagThreshold = 3
)

// QFunc returns the current Q estimate for an experience's state/action on
// the brain that produced it.
type QFunc func(e replay.Experience) float64

// Result reports one detector pass.
type Result struct {
	Checked         bool    `json:"checked"`
	TrainError      float64 `json:"train_error"`
	ValidationError float64 `json:"validation_error"`
	Qualifying      bool    `json:"qualifying"`
	Flagged         bool    `json:"flagged"`
	Counter         int     `json:"counter"`
}

// Detector tracks train/validation error over the replay buffer and flags
// overfitting with a hysteresis counter: three consecutive qualifying checks
// raise the flag, a non-qualifying check decrements (never resets) the
// counter, and the flag clears only once the counter reaches zero.
type Detector struct {
	prevValidation float64
	hasPrev        bool
	counter        int
	flagged        bool
}

// New creates a detector with no history.
func New() *Detector {
	return &Detector{}
}

// Flagged reports whether mitigation should currently be active.
func (d *Detector) Flagged() bool { return d.flagged }

// Check splits the buffer 80/20 by order, computes the mean-squared error of
// Q[state][action] against the stored reward on each partition, and updates
// the hysteresis state. Buffers below minSamples are skipped entirely.
func (d *Detector) Check(ordered []replay.Experience, qv QFunc) Result {
	if len(ordered) < minSamples {
		return Result{Flagged: d.flagged, Counter: d.counter}
	}

	split := int(float64(len(ordered)) * trainRatio)
	trainErr := mse(ordered[:split], qv)
	valErr := mse(ordered[split:], qv)

	qualifying := d.hasPrev &&
		valErr >= d.prevValidation*1.10 &&
		valErr > trainErr*1.5

	if qualifying {
		d.counter++
		if d.counter >= flagThreshold {
			d.flagged = true
		}
	} else {
		if d.counter > 0 {
			d.counter--
		}
		if d.counter == 0 {
			d.flagged = false
		}
	}

	d.prevValidation = valErr
	d.hasPrev = true

	return Result{
		Checked:         true,
		TrainError:      trainErr,
		ValidationError: valErr,
		Qualifying:      qualifying,
		Flagged:         d.flagged,
		Counter:         d.counter,
	}
}

func mse(batch []replay.Experience, qv QFunc) float64 {
	if len(batch) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range batch {
		d := qv(e) - e.Reward
		sum += d * d
	}
	return sum / float64(len(batch))
}
