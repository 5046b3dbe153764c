package brain

import "strings"

// Kind selects which of the two brains a decision belongs to. Both brains
// live for the whole process; Kind only routes credit and policy queries.
type Kind int

const (
	KindTrend Kind = iota
	KindReversal
)

func (k Kind) String() string {
	switch k {
	case KindTrend:
		return "trend"
	case KindReversal:
		return "reversal"
	default:
		return "unknown"
	}
}

// KindFromTag maps a proposed-trade tag onto a brain at the boundary, so the
// rest of the engine deals in the enum only.
func KindFromTag(tag string) Kind {
	if strings.Contains(strings.ToLower(tag), "trend") {
		return KindTrend
	}
	return KindReversal
}

// KindForFeatures routes a decision by trend strength: strongly trending
// markets go to the trend brain, everything else to the reversal brain.
func KindForFeatures(trendStrength float64) Kind {
	if trendStrength > 0.6 {
		return KindTrend
	}
	return KindReversal
}
