package persistence

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
	"adaptive-core/internal/profile"
)

func learnedBrain(kind brain.Kind, seed int64) *brain.Brain {
	b := brain.NewWithRand(kind, rand.New(rand.NewSource(seed)))
	rng := rand.New(rand.NewSource(seed + 100))
	for i := 0; i < 50; i++ {
		state := features.StateID(rng.Intn(features.NumStates))
		action := brain.ActionID(rng.Intn(brain.NumActions))
		next := features.StateID(rng.Intn(features.NumStates))
		b.Update(state, action, rng.Float64()*2-1, next, rng.Intn(4) == 0, 0.1, 0.95)
		b.RecordOutcome(rng.Float64() - 0.4)
	}
	return b
}

func sampleProfile() *profile.SymbolProfile {
	p := profile.New("BTCUSDT")
	p.AvgDailyRange = 0.034
	p.SpikeProbability = 0.41
	p.ReversionSpeed = 0.27
	p.TrendPersistence = 0.63
	for i := range p.SessionVolatility {
		p.SessionVolatility[i] = 0.1 * float64(i+1)
	}
	p.SampleCount = 512
	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	trend := learnedBrain(brain.KindTrend, 1)
	reversal := learnedBrain(brain.KindReversal, 2)
	prof := sampleProfile()

	if err := store.Save("BTCUSDT", trend.Export(), reversal.Export(), prof); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotTrend, gotReversal, gotProf, err := store.Load("BTCUSDT")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantTrend := trend.Export()
	if gotTrend.Q != wantTrend.Q {
		t.Fatal("trend Q table changed across round trip")
	}
	if gotTrend.Trace != wantTrend.Trace {
		t.Fatal("trend trace changed across round trip")
	}
	if math.Abs(gotTrend.Accuracy-wantTrend.Accuracy) > 1e-9 {
		t.Fatalf("trend accuracy=%v want %v", gotTrend.Accuracy, wantTrend.Accuracy)
	}
	if gotTrend.TradeCount != wantTrend.TradeCount {
		t.Fatalf("trend trade count=%d want %d", gotTrend.TradeCount, wantTrend.TradeCount)
	}
	if !gotTrend.Initialized {
		t.Fatal("trend initialized flag lost")
	}

	wantReversal := reversal.Export()
	if gotReversal.Q != wantReversal.Q {
		t.Fatal("reversal Q table changed across round trip")
	}

	if math.Abs(gotProf.AvgDailyRange-prof.AvgDailyRange) > 1e-9 ||
		math.Abs(gotProf.SpikeProbability-prof.SpikeProbability) > 1e-9 ||
		math.Abs(gotProf.ReversionSpeed-prof.ReversionSpeed) > 1e-9 ||
		math.Abs(gotProf.TrendPersistence-prof.TrendPersistence) > 1e-9 {
		t.Fatalf("profile drifted: %+v", gotProf)
	}
	if gotProf.SessionVolatility != prof.SessionVolatility {
		t.Fatalf("session volatility drifted: %v", gotProf.SessionVolatility)
	}
	if gotProf.SampleCount != 512 {
		t.Fatalf("SampleCount=%d want 512", gotProf.SampleCount)
	}
	if gotProf.Symbol != "BTCUSDT" {
		t.Fatalf("Symbol=%q want BTCUSDT", gotProf.Symbol)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, _, _, err := store.Load("NOPE"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := os.WriteFile(store.Path("BTCUSDT"), []byte("JUNKJUNKJUNKJUNK"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := store.Load("BTCUSDT")
	if err == nil || !strings.Contains(err.Error(), "bad magic") {
		t.Fatalf("err=%v want bad magic", err)
	}
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	trend := learnedBrain(brain.KindTrend, 3)
	reversal := learnedBrain(brain.KindReversal, 4)
	if err := store.Save("BTCUSDT", trend.Export(), reversal.Export(), sampleProfile()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(store.Path("BTCUSDT"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path("BTCUSDT"), raw[:len(raw)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := store.Load("BTCUSDT"); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	trend := learnedBrain(brain.KindTrend, 5)
	reversal := learnedBrain(brain.KindReversal, 6)
	if err := store.Save("ETHUSDT", trend.Export(), reversal.Export(), sampleProfile()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "ETHUSDT.brain" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir contents %v want only ETHUSDT.brain", names)
	}
}

func TestPath(t *testing.T) {
	store := NewStore("/tmp/brains")
	if got, want := store.Path("BTCUSDT"), filepath.Join("/tmp/brains", "BTCUSDT.brain"); got != want {
		t.Fatalf("Path=%q want %q", got, want)
	}
}
