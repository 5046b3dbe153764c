package virtual

import (
	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
)

// MaxPreTrainCandles bounds the historical window replayed for seeding.
const MaxPreTrainCandles = 5000

// Candle is the minimal bar shape pre-training needs.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PreTrainResult summarizes a seeding pass.
type PreTrainResult struct {
	Candles int `json:"candles"`
	Updates int `json:"updates"`
	Skipped bool `json:"skipped"`
}

// PreTrain replays a bounded candle window through a deterministic
// range/momentum heuristic to seed both Q-tables before live operation.
// It must be skipped when a persisted brain was already loaded, so the same
// history is never learned twice on top of saved state.
func PreTrain(trend, reversal *brain.Brain, candles []Candle, alpha, gamma float64) PreTrainResult {
	if trend.Initialized() || reversal.Initialized() {
		return PreTrainResult{Skipped: true}
	}
	if len(candles) > MaxPreTrainCandles {
		candles = candles[len(candles)-MaxPreTrainCandles:]
	}

	const lookback = 10
	res := PreTrainResult{Candles: len(candles)}

	for i := lookback; i < len(candles)-1; i++ {
		v, mom := heuristicVector(candles[i-lookback : i+1])
		state := features.Encode(v, 0.5)

		// Deterministic policy: momentum past the threshold is an entry
		// in its direction, otherwise hold.
		action := brain.ActionHold
		switch {
		case mom > 0.002:
			action = brain.ActionEnterLong
		case mom < -0.002:
			action = brain.ActionEnterShort
		}

		// Score the action against the next candle's move.
		next := candles[i+1]
		move := 0.0
		if candles[i].Close > 0 {
			move = (next.Close - candles[i].Close) / candles[i].Close
		}
		reward := heuristicReward(action, move)

		nv, _ := heuristicVector(candles[i-lookback+1 : i+2])
		nextState := features.Encode(nv, 0.5)

		b := reversal
		if brain.KindForFeatures(v.TrendStrength) == brain.KindTrend {
			b = trend
		}
		b.Update(state, action, reward, nextState, false, alpha, gamma)
		res.Updates++
	}
	return res
}

// heuristicVector builds a coarse feature vector from a candle window, plus
// the raw momentum used by the seeding policy.
func heuristicVector(window []Candle) (features.Vector, float64) {
	v := features.Neutral()
	n := len(window)
	if n < 2 {
		return v, 0
	}

	first := window[0].Close
	last := window[n-1].Close
	mom := 0.0
	if first > 0 {
		mom = (last - first) / first
	}
	v.Momentum = clamp01(0.5 + mom*25)
	v.TrendStrength = clamp01(0.5 + mom*15)
	v.HigherTFTrend = v.TrendStrength

	hi := window[0].High
	lo := window[0].Low
	for _, c := range window {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	if last > 0 {
		v.Volatility = clamp01((hi - lo) / last * 50)
	}
	v.MarketRegime = clamp01(absF(mom) * 40 * (1 - v.Volatility*0.5))

	return v, mom
}

func heuristicReward(action brain.ActionID, move float64) float64 {
	switch action {
	case brain.ActionEnterLong:
		return clampReward(move * 100)
	case brain.ActionEnterShort:
		return clampReward(-move * 100)
	default:
		// Holding through a big move is a small mistake, holding through
		// chop is mildly right.
		return clampReward(0.1 - absF(move)*50)
	}
}

func clampReward(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
