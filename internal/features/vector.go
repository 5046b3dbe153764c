package features

// Vector is the normalized market snapshot consumed by the decision engine.
// Every field is expected in [0,1]; Clamp enforces that for values coming
// from collaborators that cannot guarantee the range.
type Vector struct {
	TrendStrength     float64 `json:"trend_strength"`
	Volatility        float64 `json:"volatility"`
	Momentum          float64 `json:"momentum"`
	VolumeRatio       float64 `json:"volume_ratio"`
	MarketRegime      float64 `json:"market_regime"`
	TimeOfDay         float64 `json:"time_of_day"`
	HeatmapStrength   float64 `json:"heatmap_strength"`
	OrderflowStrength float64 `json:"orderflow_strength"`
	StructureQuality  float64 `json:"structure_quality"`
	RiskSentiment     float64 `json:"risk_sentiment"`
	HigherTFTrend     float64 `json:"higher_tf_trend"`
	RSI               float64 `json:"rsi"`
	Correlation       float64 `json:"correlation"`
}

// Neutral returns a vector with every component at its midpoint. It is the
// substitute used when a collaborator cannot supply data for a tick.
func Neutral() Vector {
	return Vector{
		TrendStrength:     0.5,
		Volatility:        0.5,
		Momentum:          0.5,
		VolumeRatio:       0.5,
		MarketRegime:      0.5,
		TimeOfDay:         0.5,
		HeatmapStrength:   0.5,
		OrderflowStrength: 0.5,
		StructureQuality:  0.5,
		RiskSentiment:     0.5,
		HigherTFTrend:     0.5,
		RSI:               0.5,
		Correlation:       0.5,
	}
}

// Clamp forces every component into [0,1].
func (v Vector) Clamp() Vector {
	v.TrendStrength = clamp01(v.TrendStrength)
	v.Volatility = clamp01(v.Volatility)
	v.Momentum = clamp01(v.Momentum)
	v.VolumeRatio = clamp01(v.VolumeRatio)
	v.MarketRegime = clamp01(v.MarketRegime)
	v.TimeOfDay = clamp01(v.TimeOfDay)
	v.HeatmapStrength = clamp01(v.HeatmapStrength)
	v.OrderflowStrength = clamp01(v.OrderflowStrength)
	v.StructureQuality = clamp01(v.StructureQuality)
	v.RiskSentiment = clamp01(v.RiskSentiment)
	v.HigherTFTrend = clamp01(v.HigherTFTrend)
	v.RSI = clamp01(v.RSI)
	v.Correlation = clamp01(v.Correlation)
	return v
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
