package reward

import "math"

// MinRiskFloor is the smallest initial risk accepted by the sniper reward.
// It guards the R-multiple division when entry and stop nearly coincide.
const MinRiskFloor = 1e-4

// Sniper scores a closed trade that is credited to a brain.
//
// Losses are scored -1 flat. Wins earn up to +1 from their R-multiple, but a
// win that spent most of its life near the stop is deliberately under-rewarded:
// a drawdown past 80% of initial risk forces the reward down to 0.1 no matter
// how large the final profit ("won on luck, not skill").
func Sniper(profit, initialRisk, maxAdverse float64) float64 {
	if profit <= 0 {
		return -1
	}

	risk := math.Abs(initialRisk)
	if risk < MinRiskFloor {
		risk = MinRiskFloor
	}

	ddPenalty := math.Abs(maxAdverse) / risk
	if ddPenalty > 0.8 {
		return 0.1
	}

	rMultiple := profit / risk
	r := rMultiple*0.5 + (1 - ddPenalty)
	if r > 1 {
		r = 1
	}
	return r
}

// Tuning scores one parameter-adaptation step of the influence-weight loop.
// prev and cur are the performance metrics before and after the step;
// paramDelta is the summed absolute change applied to the parameters, which
// feeds a stability penalty discouraging oscillating adjustments.
func Tuning(prev, cur PerformanceMetrics, paramDelta float64) float64 {
	r := (cur.PerformanceScore - prev.PerformanceScore) * 1.5
	r += cur.WinRate - prev.WinRate

	switch {
	case cur.ProfitFactor > 1.5:
		r += 0.3
	case cur.ProfitFactor < 1.0:
		r -= 0.3
	}

	switch {
	case cur.MaxDrawdown > 0.15:
		r -= 0.4
	case cur.MaxDrawdown < 0.08:
		r += 0.2
	}

	if cur.ConsecutiveWins >= 3 {
		r += 0.15
	}
	if cur.ConsecutiveLosses >= 3 {
		r -= 0.2
	}

	stability := 0.15 * math.Abs(paramDelta)
	if stability > 0.5 {
		stability = 0.5
	}
	r -= stability

	switch {
	case cur.Sharpe > 1.5:
		r += 0.25
	case cur.Sharpe < 0.5:
		r -= 0.25
	}

	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
