package gate

import (
	"fmt"
	"strings"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
	"adaptive-core/internal/profile"
)

// Thresholds for the allow/deny decision.
const (
	// BootstrapTrades is the sample count under which a brain is always
	// allowed to trade so it can gather initial experience.
	BootstrapTrades = 10
	// MinAccuracy is the floor under which a seasoned brain is denied.
	MinAccuracy = 0.45
	// SpikeCeiling denies breakout entries on spike-prone instruments.
	SpikeCeiling = 0.7
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed    bool    `json:"allowed"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// Gate combines brain accuracy with feature alignment into a pass/fail check
// applied before a proposed trade reaches execution upstream.
type Gate struct {
	Enabled bool
}

// New creates a gate; a disabled gate allows everything with full confidence
// reporting intact.
func New(enabled bool) *Gate {
	return &Gate{Enabled: enabled}
}

// Alignment accumulates fixed bonuses for internally consistent features.
// Directional agreement counts in either direction: a coherent short setup
// aligns exactly like a coherent long one.
func Alignment(v features.Vector) float64 {
	score := 0.0

	// 1. Trend and momentum pointing the same way.
	if (v.TrendStrength > 0.6 && v.Momentum > 0.6) ||
		(v.TrendStrength < 0.4 && v.Momentum < 0.4) {
		score += 0.3
	}

	// 2. Clean structure.
	if v.StructureQuality > 0.7 {
		score += 0.2
	}

	// 3. Orderflow and heatmap agreeing.
	if (v.OrderflowStrength > 0.6 && v.HeatmapStrength > 0.6) ||
		(v.OrderflowStrength < 0.4 && v.HeatmapStrength < 0.4) {
		score += 0.2
	}

	return score
}

// Confidence blends feature alignment with the brain's running accuracy.
func Confidence(v features.Vector, b *brain.Brain) float64 {
	return (Alignment(v) + b.Accuracy()) / 2
}

// Check evaluates a proposed trade. The checks run in order; the first
// failing one sets the reason.
func (g *Gate) Check(tag string, v features.Vector, b *brain.Brain, prof *profile.SymbolProfile) Decision {
	conf := Confidence(v, b)
	if !g.Enabled {
		return Decision{Allowed: true, Confidence: conf}
	}

	// 1. Bootstrap exemption: young brains trade unconditionally.
	if b.TradeCount() < BootstrapTrades {
		return Decision{Allowed: true, Confidence: conf, Reason: "bootstrap"}
	}

	// 2. Accuracy floor.
	if b.Accuracy() < MinAccuracy {
		return Decision{
			Allowed:    false,
			Confidence: conf,
			Reason:     fmt.Sprintf("brain accuracy %.2f below %.2f", b.Accuracy(), MinAccuracy),
		}
	}

	// 3. Spike guard: breakout entries on spike-prone instruments get
	// stopped out by wicks more often than they follow through.
	if prof != nil && isBreakout(tag) && prof.SpikeProbability > SpikeCeiling {
		return Decision{
			Allowed:    false,
			Confidence: conf,
			Reason:     fmt.Sprintf("spike probability %.2f too high for breakout", prof.SpikeProbability),
		}
	}

	return Decision{Allowed: true, Confidence: conf}
}

func isBreakout(tag string) bool {
	return strings.Contains(strings.ToLower(tag), "breakout")
}
