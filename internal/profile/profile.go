package profile

import (
	"math"
	"time"
)

// emaWeight controls how fast the profile adapts to new observations.
const emaWeight = 0.05

// SessionCount buckets the trading day into Asia / Europe / US sessions.
const SessionCount = 3

// SymbolProfile holds per-instrument learned characteristics. It is updated
// incrementally after every virtual-trade outcome and persisted with the
// brains. No internal locking: the owning engine core serializes access.
type SymbolProfile struct {
	Symbol            string
	AvgDailyRange     float64
	SpikeProbability  float64
	ReversionSpeed    float64
	TrendPersistence  float64
	SessionVolatility [SessionCount]float64
	SampleCount       int64
}

// New creates a profile with mid defaults so early gate checks are not
// biased by an empty history.
func New(symbol string) *SymbolProfile {
	return &SymbolProfile{
		Symbol:           symbol,
		SpikeProbability: 0.5,
		ReversionSpeed:   0.5,
		TrendPersistence: 0.5,
	}
}

// TradeObservation summarizes one closed virtual trade for profile learning.
type TradeObservation struct {
	ClosedAt time.Time
	// Adverse excursion relative to initial risk, in [0, +inf).
	DrawdownRatio float64
	// True when the trade was taken with the trend brain and won.
	TrendWin bool
	// True when the trade was taken with the reversal brain and won.
	ReversalWin bool
	// Realized price range over the trade's life relative to entry.
	RangeFraction float64
}

// Observe folds one trade outcome into the profile.
func (p *SymbolProfile) Observe(obs TradeObservation) {
	// A drawdown blowing past the initial risk is a spike signature.
	spiked := 0.0
	if obs.DrawdownRatio > 0.8 {
		spiked = 1.0
	}
	p.SpikeProbability = ema(p.SpikeProbability, spiked)

	if obs.TrendWin {
		p.TrendPersistence = ema(p.TrendPersistence, 1)
	} else {
		p.TrendPersistence = ema(p.TrendPersistence, 0)
	}
	if obs.ReversalWin {
		p.ReversionSpeed = ema(p.ReversionSpeed, 1)
	} else {
		p.ReversionSpeed = ema(p.ReversionSpeed, 0)
	}

	sess := SessionIndex(obs.ClosedAt)
	p.SessionVolatility[sess] = ema(p.SessionVolatility[sess], math.Abs(obs.RangeFraction))

	p.SampleCount++
}

// ObserveDailyRange folds an observed daily high-low range (as a fraction of
// price) into the average daily range estimate.
func (p *SymbolProfile) ObserveDailyRange(rangeFraction float64) {
	if rangeFraction <= 0 {
		return
	}
	p.AvgDailyRange = ema(p.AvgDailyRange, rangeFraction)
}

// SessionIndex maps a wall-clock time onto a session bucket.
func SessionIndex(t time.Time) int {
	h := t.UTC().Hour()
	switch {
	case h < 8:
		return 0 // Asia
	case h < 16:
		return 1 // Europe
	default:
		return 2 // US
	}
}

func ema(prev, sample float64) float64 {
	return prev*(1-emaWeight) + sample*emaWeight
}
