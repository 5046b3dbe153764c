package features

import (
	"math"
	"sync"
	"time"
)

// Synth maintains per-symbol price/volume windows and derives a normalized
// feature vector from them. Components that need external collaborators
// (orderflow, heatmap, structure, correlation) stay at their neutral default
// until SetExternal supplies them; the engine never blocks on missing data.
type Synth struct {
	mu       sync.Mutex
	prices   map[string][]float64
	volumes  map[string][]float64
	external map[string]External
	window   int
	shortMA  int
	longMA   int
	rsi      int
}

// External carries the collaborator-supplied components of the vector.
type External struct {
	HeatmapStrength   float64
	OrderflowStrength float64
	StructureQuality  float64
	RiskSentiment     float64
	Correlation       float64
}

// NewSynth builds a feature synthesizer with the given indicator windows.
func NewSynth(shortMA, longMA, rsiPeriod, window int) *Synth {
	if window < longMA {
		window = longMA
	}
	return &Synth{
		prices:   make(map[string][]float64),
		volumes:  make(map[string][]float64),
		external: make(map[string]External),
		window:   window,
		shortMA:  shortMA,
		longMA:   longMA,
		rsi:      rsiPeriod,
	}
}

// Update ingests a new price/volume observation for a symbol.
func (s *Synth) Update(symbol string, price, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	arr := append(s.prices[symbol], price)
	if len(arr) > s.window {
		arr = arr[len(arr)-s.window:]
	}
	s.prices[symbol] = arr

	vols := append(s.volumes[symbol], volume)
	if len(vols) > s.window {
		vols = vols[len(vols)-s.window:]
	}
	s.volumes[symbol] = vols
}

// SetExternal stores collaborator-supplied components for a symbol. Zero
// values are replaced by the neutral midpoint.
func (s *Synth) SetExternal(symbol string, ext External) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ext.HeatmapStrength == 0 {
		ext.HeatmapStrength = 0.5
	}
	if ext.OrderflowStrength == 0 {
		ext.OrderflowStrength = 0.5
	}
	if ext.StructureQuality == 0 {
		ext.StructureQuality = 0.5
	}
	if ext.RiskSentiment == 0 {
		ext.RiskSentiment = 0.5
	}
	if ext.Correlation == 0 {
		ext.Correlation = 0.5
	}
	s.external[symbol] = ext
}

// Vector derives the current feature vector for a symbol. A symbol with too
// little history yields the neutral vector rather than an error.
func (s *Synth) Vector(symbol string, now time.Time) Vector {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := s.prices[symbol]
	if len(prices) < 2 {
		return Neutral()
	}
	last := prices[len(prices)-1]

	v := Neutral()

	// Trend strength: divergence of short vs long SMA, scaled into [0,1]
	// around the 0.5 midpoint (0.5 = flat).
	smaS := SMA(prices, s.shortMA)
	smaL := SMA(prices, s.longMA)
	if smaS > 0 && smaL > 0 {
		v.TrendStrength = clamp01(0.5 + (smaS-smaL)/smaL*25)
	}

	// Volatility: stddev of recent returns relative to price.
	v.Volatility = clamp01(stddevReturns(prices, s.shortMA) * 100)

	// Momentum: rate of change over the short window, centered at 0.5.
	if n := len(prices); n > s.shortMA && prices[n-1-s.shortMA] > 0 {
		roc := (last - prices[n-1-s.shortMA]) / prices[n-1-s.shortMA]
		v.Momentum = clamp01(0.5 + roc*25)
	}

	// Volume ratio: last volume vs its window average, 0.5 = average.
	vols := s.volumes[symbol]
	if avg := SMA(vols, len(vols)); avg > 0 && len(vols) > 0 {
		v.VolumeRatio = clamp01(vols[len(vols)-1] / avg / 2)
	}

	// Market regime: trending when the SMAs diverge against low noise,
	// ranging otherwise. 0 = tight range, 1 = strong trend.
	trendDist := math.Abs(v.TrendStrength - 0.5) * 2
	v.MarketRegime = clamp01(trendDist * (1 - v.Volatility*0.5) * 1.5)

	// Time of day folded onto [0,1).
	v.TimeOfDay = float64(now.UTC().Hour()*60+now.UTC().Minute()) / (24 * 60)

	// Higher timeframe trend: slope of the long SMA proxy via window ends.
	if first := prices[0]; first > 0 {
		v.HigherTFTrend = clamp01(0.5 + (last-first)/first*10)
	}

	v.RSI = clamp01(RSI(prices, s.rsi) / 100)

	if ext, ok := s.external[symbol]; ok {
		v.HeatmapStrength = ext.HeatmapStrength
		v.OrderflowStrength = ext.OrderflowStrength
		v.StructureQuality = ext.StructureQuality
		v.RiskSentiment = ext.RiskSentiment
		v.Correlation = ext.Correlation
	}

	return v.Clamp()
}

// History returns a copy of the stored price window for a symbol.
func (s *Synth) History(symbol string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.prices[symbol]))
	copy(out, s.prices[symbol])
	return out
}

func stddevReturns(prices []float64, period int) float64 {
	if period <= 1 || len(prices) < period+1 {
		return 0
	}
	rets := make([]float64, 0, period)
	for i := len(prices) - period; i < len(prices); i++ {
		if prices[i-1] > 0 {
			rets = append(rets, (prices[i]-prices[i-1])/prices[i-1])
		}
	}
	if len(rets) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	varsum := 0.0
	for _, r := range rets {
		varsum += (r - mean) * (r - mean)
	}
	return math.Sqrt(varsum / float64(len(rets)))
}
