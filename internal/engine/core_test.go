package engine

import (
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/events"
	"adaptive-core/internal/features"
	"adaptive-core/internal/persistence"
	"adaptive-core/internal/profile"
	"adaptive-core/internal/virtual"
)

func testParams() Params {
	p := DefaultParams()
	p.PersistEnabled = false
	p.PretrainEnabled = false
	p.JournalEnabled = false
	return p
}

func testCore(params Params, store *persistence.Store) *Core {
	return NewCore("BTCUSDT", params, features.NewSynth(7, 25, 14, 200), store, nil, nil, nil)
}

func climbCandles(n int) []virtual.Candle {
	out := make([]virtual.Candle, n)
	price := 100.0
	for i := range out {
		next := price * 1.002
		out[i] = virtual.Candle{Open: price, High: next, Low: price, Close: next, Volume: 5}
		price = next
	}
	return out
}

func TestBootstrapPretrainSeedsFreshCore(t *testing.T) {
	params := testParams()
	params.PretrainEnabled = true
	c := testCore(params, nil)

	c.Bootstrap(climbCandles(200))

	st := c.Status()
	if !st.Trend.Initialized {
		t.Fatal("trend brain not seeded by pre-training")
	}
}

func TestBootstrapPrefersSavedState(t *testing.T) {
	dir := t.TempDir()
	store := persistence.NewStore(dir)

	seeded := brain.NewWithRand(brain.KindTrend, rand.New(rand.NewSource(1)))
	seeded.Update(10, brain.ActionHold, 0.5, 10, true, 0.1, 0.95)
	for i := 0; i < 7; i++ {
		seeded.RecordOutcome(1)
	}
	empty := brain.NewWithRand(brain.KindReversal, rand.New(rand.NewSource(2)))
	empty.Update(0, brain.ActionHold, 0, 0, true, 0.1, 0.95)
	if err := store.Save("BTCUSDT", seeded.Export(), empty.Export(), profile.New("BTCUSDT")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	params := testParams()
	params.PersistEnabled = true
	params.PretrainEnabled = true
	c := testCore(params, store)

	// Saved state wins; the candles must not be replayed on top of it.
	c.Bootstrap(climbCandles(200))

	st := c.Status()
	if st.Trend.TradeCount != 7 {
		t.Fatalf("Trend.TradeCount=%d want 7 from disk", st.Trend.TradeCount)
	}
	if !st.Trend.Initialized {
		t.Fatal("restored brain must report initialized")
	}
}

func TestBootstrapFallsBackOnLoadFailure(t *testing.T) {
	params := testParams()
	params.PersistEnabled = true
	params.PretrainEnabled = true
	// Empty store dir: load fails and pre-training takes over.
	c := testCore(params, persistence.NewStore(t.TempDir()))

	c.Bootstrap(climbCandles(200))
	if !c.Status().Trend.Initialized {
		t.Fatal("load failure must fall back to pre-training")
	}
}

func TestOnQuoteDecisionCadence(t *testing.T) {
	params := testParams()
	params.DecisionEvery = 3
	c := testCore(params, nil)

	now := time.Unix(1000, 0)
	for i := 0; i < 9; i++ {
		c.OnQuote(100, 100.1, now.Add(time.Duration(i)*time.Second))
	}

	st := c.Status()
	if st.Ticks != 9 {
		t.Fatalf("Ticks=%d want 9", st.Ticks)
	}
	if st.Decisions != 3 {
		t.Fatalf("Decisions=%d want 3", st.Decisions)
	}

	// Flat prices keep trend strength at the midpoint, so every decision ran
	// through the reversal brain and decayed its exploration.
	want := 0.20 * math.Pow(0.995, 3)
	if math.Abs(st.Reversal.Epsilon-want) > 1e-12 {
		t.Fatalf("Reversal.Epsilon=%v want %v", st.Reversal.Epsilon, want)
	}
	if st.Trend.Epsilon != 0.20 {
		t.Fatalf("Trend.Epsilon=%v want untouched 0.20", st.Trend.Epsilon)
	}
}

func TestOnQuoteSubstitutesBadSide(t *testing.T) {
	params := testParams()
	params.DecisionEvery = 0
	c := testCore(params, nil)

	c.OnQuote(0, 0, time.Unix(1000, 0))
	if got := c.Status().Ticks; got != 0 {
		t.Fatalf("Ticks=%d want 0 for dead quote", got)
	}

	// One dead side substitutes the midpoint instead of dropping the tick.
	c.OnQuote(0, 100, time.Unix(1001, 0))
	if got := c.Status().Ticks; got != 1 {
		t.Fatalf("Ticks=%d want 1 after midpoint substitution", got)
	}
}

func TestDailyRangeRollsIntoProfile(t *testing.T) {
	params := testParams()
	params.DecisionEvery = 0
	c := testCore(params, nil)

	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, px := range []float64{100, 104, 101} {
		c.OnQuote(px, px, day1.Add(time.Duration(i)*time.Hour))
	}
	if got := c.prof.AvgDailyRange; got != 0 {
		t.Fatalf("AvgDailyRange=%v before rollover, want 0", got)
	}

	// First tick of the next day settles the 100-104 span.
	c.OnQuote(102, 102, day1.Add(24*time.Hour))
	want := 0.05 * (4.0 / 100.0)
	if got := c.prof.AvgDailyRange; math.Abs(got-want) > 1e-12 {
		t.Fatalf("AvgDailyRange=%v want %v", got, want)
	}

	// Bars feed the same day tracker as quotes.
	c.OnBar(110, 3, day1.Add(25*time.Hour))
	c.OnBar(99, 3, day1.Add(48*time.Hour))
	if got := c.prof.AvgDailyRange; got <= want {
		t.Fatalf("AvgDailyRange=%v should grow after a wider day", got)
	}
}

func TestDecideBootstrapAllows(t *testing.T) {
	c := testCore(testParams(), nil)

	v := features.Neutral()
	action, dec := c.Decide(v, "trend-follow")
	if !action.Valid() {
		t.Fatalf("invalid action %v", action)
	}
	if !dec.Allowed {
		t.Fatalf("fresh brain must pass the bootstrap exemption: %+v", dec)
	}
	if dec.Reason != "bootstrap" {
		t.Fatalf("Reason=%q want bootstrap", dec.Reason)
	}
}

func TestSaveWritesBrainFile(t *testing.T) {
	dir := t.TempDir()
	store := persistence.NewStore(dir)
	params := testParams()
	params.PersistEnabled = true
	params.PretrainEnabled = true
	c := testCore(params, store)

	c.Bootstrap(climbCandles(200))
	if err := c.Save(time.Unix(2000, 0)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(store.Path("BTCUSDT")); err != nil {
		t.Fatalf("brain file missing: %v", err)
	}

	// A second core restores the seeded tables without replaying history.
	c2 := testCore(params, store)
	c2.Bootstrap(nil)
	if !c2.Status().Trend.Initialized {
		t.Fatal("restored core lost the seeded state")
	}
}

func TestAutosaveOnInterval(t *testing.T) {
	dir := t.TempDir()
	store := persistence.NewStore(dir)
	params := testParams()
	params.PersistEnabled = true
	params.AutosaveInterval = time.Minute
	params.DecisionEvery = 0
	c := testCore(params, store)

	// First tick is within the interval, second is past it.
	c.OnQuote(100, 100.1, time.Now())
	if _, err := os.Stat(store.Path("BTCUSDT")); err == nil {
		t.Fatal("autosave fired before the interval elapsed")
	}
	c.OnQuote(100, 100.1, time.Now().Add(2*time.Minute))
	if _, err := os.Stat(store.Path("BTCUSDT")); err != nil {
		t.Fatalf("autosave did not fire: %v", err)
	}
}

func TestDrawdownRaisesRiskAlertOnce(t *testing.T) {
	bus := events.NewBus()
	c := NewCore("BTCUSDT", testParams(), features.NewSynth(7, 25, 14, 200), nil, nil, bus, nil)
	ch, unsub := bus.Subscribe(events.EventRiskAlert, 4)
	defer unsub()

	closed := func(ticket int64, profit float64) virtual.Trade {
		return virtual.Trade{
			Ticket: ticket, Direction: virtual.DirLong,
			OpenPrice: 100, StopLoss: 99, Lot: 1, Tag: "trend",
			Brain: brain.KindTrend, Profit: profit,
			CloseTime: time.Unix(3000, 0), CloseReason: "sl",
		}
	}

	// A win then a large loss puts the windowed drawdown at 50%.
	c.creditClosedTrade(closed(1, 2000))
	c.creditClosedTrade(closed(2, -6000))

	select {
	case msg := <-ch:
		s, ok := msg.(string)
		if !ok || !strings.Contains(s, "BTCUSDT") || !strings.Contains(s, "drawdown") {
			t.Fatalf("unexpected alert payload %v", msg)
		}
	default:
		t.Fatal("no risk alert published for 50% drawdown")
	}

	// Further losses while already alerted must not re-publish.
	c.creditClosedTrade(closed(3, -100))
	select {
	case msg := <-ch:
		t.Fatalf("risk alert must fire on the rising edge only, got %v", msg)
	default:
	}
}

func TestNudgeMovesShapeAndInfluence(t *testing.T) {
	c := testCore(testParams(), nil)
	perf := c.tracker.Compute()

	c.applyNudge(brain.ActionWidenStop, brain.KindTrend, 0, perf)
	if c.shape.StopFraction <= DefaultTradeShape().StopFraction {
		t.Fatalf("StopFraction=%v did not widen", c.shape.StopFraction)
	}
	if math.Abs(c.weights.Volatility-1.05) > 1e-12 {
		t.Fatalf("Volatility weight=%v want 1.05", c.weights.Volatility)
	}
	if c.pendingTune == nil || c.pendingTune.paramDelta <= 0 {
		t.Fatal("nudge must record a pending tune with a positive stability delta")
	}

	c.applyNudge(brain.ActionScaleDown, brain.KindTrend, 0, perf)
	if math.Abs(c.weights.Momentum-0.95) > 1e-12 || math.Abs(c.weights.Risk-1.05) > 1e-12 {
		t.Fatalf("weights=%+v after scale down", c.weights)
	}

	// Repeated nudges stop at the bounds.
	for i := 0; i < 100; i++ {
		c.applyNudge(brain.ActionWidenStop, brain.KindTrend, 0, perf)
	}
	if c.weights.Volatility != 1.5 {
		t.Fatalf("Volatility weight=%v want clamped 1.5", c.weights.Volatility)
	}
	if c.shape.StopFraction != 0.05 {
		t.Fatalf("StopFraction=%v want clamped 0.05", c.shape.StopFraction)
	}
}

func TestWeightedStretchesAroundMidpoint(t *testing.T) {
	c := testCore(testParams(), nil)

	v := features.Neutral()
	v.TrendStrength = 0.6
	if got := c.weighted(v); got != v {
		t.Fatalf("neutral weights must pass features through, got %+v", got)
	}

	c.weights.Trend = 1.5
	if got := c.weighted(v); math.Abs(got.TrendStrength-0.65) > 1e-12 {
		t.Fatalf("TrendStrength=%v want 0.65 under weight 1.5", got.TrendStrength)
	}

	c.weights.Trend = 0.5
	if got := c.weighted(v); math.Abs(got.TrendStrength-0.55) > 1e-12 {
		t.Fatalf("TrendStrength=%v want 0.55 under weight 0.5", got.TrendStrength)
	}

	// Stretching never leaves the unit interval.
	c.weights.Momentum = 1.5
	v.Momentum = 0
	if got := c.weighted(v); got.Momentum != 0 {
		t.Fatalf("Momentum=%v want clamped 0", got.Momentum)
	}
}

func TestShapeClampBounds(t *testing.T) {
	s := clampShape(TradeShape{StopFraction: 10, TargetRatio: 0.01, LotScale: 100})
	if s.StopFraction != 0.05 || s.TargetRatio != 0.5 || s.LotScale != 4 {
		t.Fatalf("clamped shape=%+v", s)
	}
	def := DefaultTradeShape()
	if clampShape(def) != def {
		t.Fatal("default shape must be inside bounds")
	}
}
