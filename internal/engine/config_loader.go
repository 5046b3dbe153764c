package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"adaptive-core/pkg/db"
)

// InstrumentConfig is one instrument entry in YAML.
type InstrumentConfig struct {
	Symbol     string         `yaml:"symbol"`
	Name       string         `yaml:"name"`
	MinTick    float64        `yaml:"min_tick"`
	Lot        float64        `yaml:"lot"`
	Parameters map[string]any `yaml:"parameters"`
	IsActive   bool           `yaml:"is_active"`
}

// InstrumentFile is the top-level YAML structure.
type InstrumentFile struct {
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// LoadInstruments reads instrument definitions from a YAML file.
func LoadInstruments(path string) ([]InstrumentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file InstrumentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return file.Instruments, nil
}

// SyncInstrumentsToDB upserts instrument definitions into the database so
// the journal and API always see the configured set.
func SyncInstrumentsToDB(ctx context.Context, database *db.Database, configs []InstrumentConfig) error {
	for _, cfg := range configs {
		paramsJSON, err := json.Marshal(cfg.Parameters)
		if err != nil {
			return fmt.Errorf("marshal parameters for %s: %w", cfg.Symbol, err)
		}
		ins := db.Instrument{
			Symbol:     cfg.Symbol,
			Name:       cfg.Name,
			MinTick:    cfg.MinTick,
			Lot:        cfg.Lot,
			Parameters: string(paramsJSON),
			IsActive:   cfg.IsActive,
		}
		if ins.MinTick <= 0 {
			ins.MinTick = 1e-4
		}
		if ins.Lot <= 0 {
			ins.Lot = 1
		}
		if err := database.UpsertInstrument(ctx, ins); err != nil {
			return err
		}
	}
	return nil
}

// ParamsForInstrument copies base params and applies per-instrument
// overrides from the YAML parameters map. Unknown keys are ignored.
func ParamsForInstrument(base Params, cfg InstrumentConfig) Params {
	p := base
	if cfg.MinTick > 0 {
		p.MinTick = cfg.MinTick
	}
	if cfg.Lot > 0 {
		p.Lot = cfg.Lot
	}
	for key, raw := range cfg.Parameters {
		val, ok := toFloat(raw)
		if !ok {
			continue
		}
		switch key {
		case "alpha":
			p.Alpha = val
		case "gamma":
			p.Gamma = val
		case "lambda":
			p.Lambda = val
		case "batch_size":
			p.BatchSize = int(val)
		case "replay_capacity":
			p.ReplayCapacity = int(val)
		case "decision_every":
			p.DecisionEvery = int(val)
		case "base_equity":
			p.BaseEquity = val
		}
	}
	return p
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
