package main

import (
	"context"
	"log"
	"testing"
	"time"

	"adaptive-core/internal/engine"
	"adaptive-core/internal/events"
	"adaptive-core/internal/features"
	"adaptive-core/internal/monitor"
	"adaptive-core/internal/persistence"
	"adaptive-core/internal/virtual"
	"adaptive-core/pkg/db"
)

// TestFullWorkflow runs the complete decision-engine lifecycle end to end.
func TestFullWorkflow(t *testing.T) {
	log.Println("🧪 Starting Full Workflow Test...")

	ctx := context.Background()

	// Setup Database
	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer database.Close()

	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("✅ Database initialized")

	// Setup collaborators
	bus := events.NewBus()
	metrics := monitor.NewSystemMetrics()
	journal := persistence.NewJournal(database.DB, 10, 50*time.Millisecond)
	defer journal.Close()
	store := persistence.NewStore(t.TempDir())
	synth := features.NewSynth(7, 25, 14, 200)

	params := engine.DefaultParams()
	params.DecisionEvery = 2
	params.AutosaveInterval = time.Hour
	core := engine.NewCore("BTCUSDT", params, synth, store, journal, bus, metrics)
	log.Println("✅ Engine core initialized")

	// Test 1: Bootstrap from history
	t.Run("Bootstrap", func(t *testing.T) {
		log.Println("\n📊 Test 1: Bootstrap")

		candles := make([]virtual.Candle, 300)
		price := 100.0
		for i := range candles {
			next := price * 1.001
			candles[i] = virtual.Candle{Open: price, High: next, Low: price, Close: next, Volume: 3}
			price = next
		}
		core.Bootstrap(candles)

		st := core.Status()
		if !st.Trend.Initialized && !st.Reversal.Initialized {
			t.Error("Bootstrap left both brains uninitialized")
		} else {
			log.Println("✅ Q-tables seeded from history")
		}
	})

	// Test 2: Tick pipeline
	t.Run("TickPipeline", func(t *testing.T) {
		log.Println("\n📊 Test 2: Tick Pipeline")

		now := time.Now()
		price := 100.0
		for i := 0; i < 200; i++ {
			// Gentle oscillation so trades both open and close.
			if i%40 < 20 {
				price += 0.05
			} else {
				price -= 0.05
			}
			core.OnQuote(price, price+0.02, now.Add(time.Duration(i)*time.Second))
		}

		st := core.Status()
		if st.Ticks != 200 {
			t.Errorf("Ticks=%d want 200", st.Ticks)
		}
		if st.Decisions != 100 {
			t.Errorf("Decisions=%d want 100", st.Decisions)
		}
		log.Printf("✅ Processed %d ticks, %d decisions, %d live trades",
			st.Ticks, st.Decisions, st.ActiveTrades)
	})

	// Test 3: External decision check
	t.Run("DecisionCheck", func(t *testing.T) {
		log.Println("\n📊 Test 3: Decision Check")

		v := features.Neutral()
		v.TrendStrength = 0.8
		v.Momentum = 0.75
		action, dec := core.Decide(v, "trend-follow")
		if !action.Valid() {
			t.Errorf("Invalid action %v", action)
		}
		log.Printf("✅ Decision: action=%s allowed=%v confidence=%.2f reason=%s",
			action, dec.Allowed, dec.Confidence, dec.Reason)
	})

	// Test 4: Persistence round trip
	t.Run("PersistenceRoundTrip", func(t *testing.T) {
		log.Println("\n📊 Test 4: Persistence Round Trip")

		if err := core.Save(time.Now()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		restored := engine.NewCore("BTCUSDT", params, synth, store, journal, bus, metrics)
		restored.Bootstrap(nil)
		st := restored.Status()
		if !st.Trend.Initialized && !st.Reversal.Initialized {
			t.Error("Restored core lost learned state")
		} else {
			log.Println("✅ Brain file saved and restored")
		}
	})

	// Test 5: Journal flush into sqlite
	t.Run("JournalFlush", func(t *testing.T) {
		log.Println("\n📊 Test 5: Journal Flush")

		if err := journal.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}

		decisions, err := database.ListDecisions(ctx, "BTCUSDT", 10)
		if err != nil {
			t.Fatalf("ListDecisions failed: %v", err)
		}
		if len(decisions) == 0 {
			t.Error("No decisions journaled")
		} else {
			log.Printf("✅ %d decisions journaled", len(decisions))
		}
	})

	// Test 6: Metrics pipeline
	t.Run("Metrics", func(t *testing.T) {
		log.Println("\n📊 Test 6: Metrics")

		snap := metrics.Snapshot()
		if snap.TicksProcessed == 0 || snap.DecisionsMade == 0 {
			t.Errorf("Counters empty: %+v", snap)
		}
		log.Printf("✅ Metrics: ticks=%d decisions=%d tick p95=%.3fms",
			snap.TicksProcessed, snap.DecisionsMade, snap.TickLatency.P95)
	})

	log.Println("\n🎉 Full workflow test complete")
}
