package engine

import (
	"time"

	"adaptive-core/internal/reward"
)

// Params carries the learning knobs for one engine core. Everything here is
// a plain scalar or flag surfaced from configuration; the structural
// constants (state/action space, epsilon schedule) live with the brain.
type Params struct {
	Alpha  float64
	Gamma  float64
	Lambda float64

	ReplayCapacity int
	BatchSize      int

	// DecisionEvery is how many ticks make one decision step.
	DecisionEvery int
	// ReplayEvery is how many decision steps between replay learning passes.
	ReplayEvery int
	// OverfitEvery is how many decision steps between detector checks.
	OverfitEvery int
	// TuneEvery is how many closed trades between tuning-reward settlements.
	TuneEvery int

	AutosaveInterval time.Duration

	PersistEnabled  bool
	PretrainEnabled bool
	GateEnabled     bool
	JournalEnabled  bool

	BaseEquity float64
	Lot        float64
	MinTick    float64
}

// DefaultParams returns the values the tables were tuned against.
func DefaultParams() Params {
	return Params{
		Alpha:            0.1,
		Gamma:            0.95,
		Lambda:           0.8,
		ReplayCapacity:   1000,
		BatchSize:        32,
		DecisionEvery:    10,
		ReplayEvery:      5,
		OverfitEvery:     20,
		TuneEvery:        5,
		AutosaveInterval: time.Hour,
		PersistEnabled:   true,
		PretrainEnabled:  true,
		GateEnabled:      true,
		JournalEnabled:   true,
		BaseEquity:       10000,
		Lot:              1,
		MinTick:          1e-4,
	}
}

// TradeShape holds the tunable trade-construction parameters the adaptation
// loop nudges. Values are multipliers kept inside fixed bounds.
type TradeShape struct {
	StopFraction float64 `json:"stop_fraction"` // stop distance as fraction of price
	TargetRatio  float64 `json:"target_ratio"`  // reward:risk ratio for the target
	LotScale     float64 `json:"lot_scale"`     // multiplier on the base lot
}

// DefaultTradeShape is the neutral starting point.
func DefaultTradeShape() TradeShape {
	return TradeShape{StopFraction: 0.005, TargetRatio: 1.5, LotScale: 1.0}
}

// InfluenceWeights stretch or dampen select features around the neutral
// midpoint before encoding, so the adaptation loop can shift how much each
// signal contributes to the state. 1.0 is pass-through.
type InfluenceWeights struct {
	Trend      float64 `json:"trend"`
	Volatility float64 `json:"volatility"`
	Momentum   float64 `json:"momentum"`
	Risk       float64 `json:"risk"`
}

// DefaultInfluence is the neutral starting point.
func DefaultInfluence() InfluenceWeights {
	return InfluenceWeights{Trend: 1, Volatility: 1, Momentum: 1, Risk: 1}
}

// BrainStatus is the externally visible state of one brain.
type BrainStatus struct {
	Kind        string  `json:"kind"`
	Accuracy    float64 `json:"accuracy"`
	TradeCount  int64   `json:"trade_count"`
	Epsilon     float64 `json:"epsilon"`
	Initialized bool    `json:"initialized"`
}

// CoreStatus is the externally visible state of one instrument core.
type CoreStatus struct {
	Symbol        string                    `json:"symbol"`
	Trend         BrainStatus               `json:"trend"`
	Reversal      BrainStatus               `json:"reversal"`
	BufferLen     int                       `json:"buffer_len"`
	BufferCap     int                       `json:"buffer_cap"`
	ActiveTrades  int                       `json:"active_trades"`
	PoolSize      int                       `json:"pool_size"`
	Ticks         int64                     `json:"ticks"`
	Decisions     int64                     `json:"decisions"`
	Performance   reward.PerformanceMetrics `json:"performance"`
	Shape         TradeShape                `json:"shape"`
	Influence     InfluenceWeights          `json:"influence"`
	OverfitFlag   bool                      `json:"overfit_flag"`
	AlphaEff      float64                   `json:"alpha_effective"`
	SpikeProb     float64                   `json:"spike_probability"`
	ProfileSample int64                     `json:"profile_samples"`
	LastSave      time.Time                 `json:"last_save"`
}

// SystemStatus describes the runtime exposed to the UI.
type SystemStatus struct {
	Mode        string   `json:"mode"`
	Symbols     []string `json:"symbols"`
	UseMockFeed bool     `json:"use_mock_feed"`
	Version     string   `json:"version"`
	MachineID   string   `json:"machine_id,omitempty"`
}
