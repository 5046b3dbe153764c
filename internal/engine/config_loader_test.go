package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"adaptive-core/pkg/db"
)

const instrumentYAML = `
instruments:
  - symbol: BTCUSDT
    name: Bitcoin / USDT
    min_tick: 0.01
    lot: 0.001
    is_active: true
    parameters:
      alpha: 0.12
      decision_every: 5
      replay_capacity: 500
  - symbol: ETHUSDT
    name: Ether / USDT
    min_tick: 0.01
    lot: 0.01
    is_active: false
`

func writeInstrumentFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instruments.yaml")
	if err := os.WriteFile(path, []byte(instrumentYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInstruments(t *testing.T) {
	configs, err := LoadInstruments(writeInstrumentFile(t))
	if err != nil {
		t.Fatalf("LoadInstruments: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("len=%d want 2", len(configs))
	}
	if configs[0].Symbol != "BTCUSDT" || !configs[0].IsActive {
		t.Fatalf("first=%+v", configs[0])
	}
	if configs[1].IsActive {
		t.Fatal("ETHUSDT should be inactive")
	}
}

func TestLoadInstrumentsMissingFile(t *testing.T) {
	if _, err := LoadInstruments(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParamsForInstrumentOverrides(t *testing.T) {
	configs, err := LoadInstruments(writeInstrumentFile(t))
	if err != nil {
		t.Fatalf("LoadInstruments: %v", err)
	}

	p := ParamsForInstrument(DefaultParams(), configs[0])
	if p.Alpha != 0.12 {
		t.Fatalf("Alpha=%v want 0.12", p.Alpha)
	}
	if p.DecisionEvery != 5 {
		t.Fatalf("DecisionEvery=%d want 5", p.DecisionEvery)
	}
	if p.ReplayCapacity != 500 {
		t.Fatalf("ReplayCapacity=%d want 500", p.ReplayCapacity)
	}
	if p.MinTick != 0.01 || p.Lot != 0.001 {
		t.Fatalf("MinTick=%v Lot=%v", p.MinTick, p.Lot)
	}
	// Keys the YAML never set keep their base values.
	if p.Gamma != DefaultParams().Gamma {
		t.Fatalf("Gamma=%v drifted from base", p.Gamma)
	}
}

func TestParamsForInstrumentIgnoresUnknownKeys(t *testing.T) {
	cfg := InstrumentConfig{Parameters: map[string]any{"mystery": 3.0, "alpha": "not a number"}}
	p := ParamsForInstrument(DefaultParams(), cfg)
	if p != DefaultParams() {
		t.Fatalf("params changed by unknown/invalid keys: %+v", p)
	}
}

func TestSyncInstrumentsToDB(t *testing.T) {
	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	configs, err := LoadInstruments(writeInstrumentFile(t))
	if err != nil {
		t.Fatalf("LoadInstruments: %v", err)
	}
	if err := SyncInstrumentsToDB(context.Background(), database, configs); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Only the active instrument comes back from the listing.
	got, err := database.ListInstruments(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "BTCUSDT" {
		t.Fatalf("listed=%v", got)
	}
	if got[0].Parameters == "" {
		t.Fatal("parameters JSON not stored")
	}
}
