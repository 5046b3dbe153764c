package brain

import (
	"math"
	"math/rand"
	"testing"
)

func greedyBrain(kind Kind) *Brain {
	b := NewWithRand(kind, rand.New(rand.NewSource(1)))
	b.epsilon = 0 // force exploitation
	return b
}

func TestSelectActionBreaksTiesToLowestIndex(t *testing.T) {
	b := greedyBrain(KindTrend)
	// All Q values are zero, so every action ties.
	if got := b.SelectAction(100); got != ActionHold {
		t.Fatalf("SelectAction on all-zero row = %v, expected %v", got, ActionHold)
	}

	// Two equal maxima: the lower index must win.
	b.q[100][ActionEnterShort] = 0.5
	b.q[100][ActionScaleUp] = 0.5
	if got := b.SelectAction(100); got != ActionEnterShort {
		t.Fatalf("SelectAction tie = %v, expected %v", got, ActionEnterShort)
	}
}

func TestUpdateMovesEstimateTowardTarget(t *testing.T) {
	tests := []struct {
		name     string
		reward   float64
		terminal bool
	}{
		{name: "terminal positive", reward: 1, terminal: true},
		{name: "terminal negative", reward: -1, terminal: true},
		{name: "bootstrapped", reward: 0.4, terminal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := greedyBrain(KindTrend)
			b.q[7][ActionEnterLong] = 0.1
			b.q[8][ActionTightenStop] = 0.9 // next-state max for bootstrap

			target := tt.reward
			if !tt.terminal {
				target = tt.reward + 0.95*b.MaxQ(8)
			}
			before := math.Abs(target - b.QValue(7, ActionEnterLong))

			td := b.Update(7, ActionEnterLong, tt.reward, 8, tt.terminal, 0.1, 0.95)
			after := math.Abs(target - b.QValue(7, ActionEnterLong))

			if td != before {
				t.Fatalf("Update returned |td|=%v, expected %v", td, before)
			}
			if after >= before {
				t.Fatalf("error did not shrink: before=%v after=%v", before, after)
			}
			if !b.Initialized() {
				t.Fatal("Update should mark the brain initialized")
			}
		})
	}
}

func TestCreditTradeDecaysTraces(t *testing.T) {
	b := greedyBrain(KindReversal)

	b.CreditTrade(10, ActionEnterLong, 1, 0.1, 0.95, 0.8)
	first := b.QValue(10, ActionEnterLong)
	if first <= 0 {
		t.Fatalf("terminal credit should raise Q, got %v", first)
	}

	// A second credit through a different state still bleeds into the first
	// pair through its decayed trace.
	b.CreditTrade(11, ActionEnterShort, 1, 0.1, 0.95, 0.8)
	if b.QValue(10, ActionEnterLong) <= first {
		t.Fatalf("decayed trace should keep moving earlier pair: %v -> %v", first, b.QValue(10, ActionEnterLong))
	}
}

func TestCreditTradeIgnoresTracesBelowCutoff(t *testing.T) {
	b := greedyBrain(KindTrend)
	b.trace[5][ActionHold] = TraceCutoff // at cutoff, not above

	b.CreditTrade(6, ActionEnterLong, 1, 0.1, 0.95, 0.8)
	if got := b.QValue(5, ActionHold); got != 0 {
		t.Fatalf("trace at cutoff must not receive credit, got %v", got)
	}
}

func TestEpsilonDecayAndFloor(t *testing.T) {
	b := greedyBrain(KindTrend)
	b.epsilon = EpsilonStart
	for i := 0; i < 10000; i++ {
		b.DecayEpsilon()
	}
	if b.Epsilon() != EpsilonFloor {
		t.Fatalf("epsilon should settle at floor %v, got %v", EpsilonFloor, b.Epsilon())
	}
}

func TestBoostCuriosityNeverLowersEpsilon(t *testing.T) {
	b := greedyBrain(KindTrend)
	b.epsilon = 0.05
	b.BoostCuriosity()
	if b.Epsilon() != CuriosityEpsilon {
		t.Fatalf("boost from below = %v, expected %v", b.Epsilon(), CuriosityEpsilon)
	}

	b.epsilon = 0.9
	b.BoostCuriosity()
	if b.Epsilon() != 0.9 {
		t.Fatalf("boost must not reduce epsilon: got %v", b.Epsilon())
	}
}

func TestRecordOutcomeAccuracyEMA(t *testing.T) {
	b := greedyBrain(KindTrend)
	if b.Accuracy() != 0.5 {
		t.Fatalf("fresh accuracy = %v, expected the neutral 0.5", b.Accuracy())
	}

	b.RecordOutcome(10) // win raises from the prior
	if got := b.Accuracy(); math.Abs(got-0.505) > 1e-12 {
		t.Fatalf("accuracy after one win = %v, expected 0.505", got)
	}

	b.RecordOutcome(-5) // loss decays only
	if got := b.Accuracy(); math.Abs(got-0.49995) > 1e-12 {
		t.Fatalf("accuracy after loss = %v, expected 0.49995", got)
	}
	if b.TradeCount() != 2 {
		t.Fatalf("trade count = %d, expected 2", b.TradeCount())
	}
}

func TestAccuracyStaysNearPriorThroughBootstrap(t *testing.T) {
	// Ten early outcomes cannot drag accuracy to an extreme either way.
	wins := greedyBrain(KindTrend)
	losses := greedyBrain(KindTrend)
	for i := 0; i < 10; i++ {
		wins.RecordOutcome(1)
		losses.RecordOutcome(-1)
	}
	if got := wins.Accuracy(); got < 0.5 || got > 0.6 {
		t.Fatalf("accuracy after 10 wins = %v, expected to stay near the prior", got)
	}
	if got := losses.Accuracy(); got > 0.5 || got < 0.4 {
		t.Fatalf("accuracy after 10 losses = %v, expected to stay near the prior", got)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	b := greedyBrain(KindTrend)
	b.Update(3, ActionEnterLong, 0.8, 4, true, 0.1, 0.95)
	b.RecordOutcome(1)

	snap := b.Export()
	restored := greedyBrain(KindTrend)
	restored.Restore(snap)

	if restored.QValue(3, ActionEnterLong) != b.QValue(3, ActionEnterLong) {
		t.Fatal("Q table did not survive round trip")
	}
	if restored.Accuracy() != b.Accuracy() || restored.TradeCount() != b.TradeCount() {
		t.Fatal("bookkeeping did not survive round trip")
	}
	if !restored.Initialized() {
		t.Fatal("initialized flag did not survive round trip")
	}
}

func TestKindForFeatures(t *testing.T) {
	if got := KindForFeatures(0.7); got != KindTrend {
		t.Fatalf("strong trend should route to trend brain, got %v", got)
	}
	if got := KindForFeatures(0.4); got != KindReversal {
		t.Fatalf("weak trend should route to reversal brain, got %v", got)
	}
}
