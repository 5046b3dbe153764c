package features

// NumStates is the size of the discretized state space: six ternary digits.
const NumStates = 729 // 3^6

// StateID indexes the Q-tables; always in [0, NumStates).
type StateID int

// binSpec holds the reference statistics used for adaptive ternary binning.
// The centroids are static per-feature constants for now; recomputing them
// from running statistics is a possible future refinement, but decision
// history was trained against these values so they must not change silently.
type binSpec struct {
	min      float64
	centroid float64
	max      float64
}

var encodeBins = [6]binSpec{
	{0, 0.5, 1}, // trend strength
	{0, 0.5, 1}, // volatility
	{0, 0.5, 1}, // momentum
	{0, 0.5, 1}, // risk sentiment
	{0, 0.5, 1}, // performance score
	{0, 0.5, 1}, // higher timeframe trend
}

// bin quantizes value into {0,1,2} using thresholds placed 40% of the way
// from the centroid toward each extreme.
func (b binSpec) bin(value float64) int {
	low := b.centroid - (b.centroid-b.min)*0.4
	high := b.centroid + (b.max-b.centroid)*0.4
	switch {
	case value < low:
		return 0
	case value > high:
		return 2
	default:
		return 1
	}
}

// Encode maps a feature vector plus the derived performance score into a
// state index. It is pure and total: any input yields a StateID in
// [0, NumStates).
func Encode(v Vector, perfScore float64) StateID {
	v = v.Clamp()
	digits := [6]int{
		encodeBins[0].bin(v.TrendStrength),
		encodeBins[1].bin(v.Volatility),
		encodeBins[2].bin(v.Momentum),
		encodeBins[3].bin(v.RiskSentiment),
		encodeBins[4].bin(clamp01(perfScore)),
		encodeBins[5].bin(v.HigherTFTrend),
	}

	// Mixed-radix (base 3) combination, least significant digit first.
	state := 0
	for i := len(digits) - 1; i >= 0; i-- {
		state = state*3 + digits[i]
	}
	if state >= NumStates {
		state = NumStates - 1
	}
	if state < 0 {
		state = 0
	}
	return StateID(state)
}

// RegimeBin exposes the ternary bucket of the market regime feature, used by
// the engine to detect regime shifts between consecutive decisions.
func RegimeBin(v Vector) int {
	return encodeBins[1].bin(clamp01(v.MarketRegime))
}
