package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
	"adaptive-core/internal/persistence"
)

// brainfile_dump prints a summary of a persisted brain file.
//
// Usage (from the repo root):
//   go run ./scripts/brainfile_dump -dir ./data/brains -symbol BTCUSDT
//
// It will:
//   1) Load and validate the file (magic, version, payload).
//   2) Print per-brain accuracy, trade counts and Q-value spread.
//   3) Print the symbol profile.

func main() {
	dir := flag.String("dir", "./data/brains", "brain file directory")
	symbol := flag.String("symbol", "BTCUSDT", "instrument symbol")
	top := flag.Int("top", 5, "number of strongest state/action pairs to print")
	flag.Parse()

	store := persistence.NewStore(*dir)
	trend, reversal, prof, err := store.Load(*symbol)
	if err != nil {
		log.Printf("load %s failed: %v", store.Path(*symbol), err)
		os.Exit(1)
	}

	fmt.Printf("file: %s\n\n", store.Path(*symbol))
	dumpBrain("trend", trend, *top)
	dumpBrain("reversal", reversal, *top)

	fmt.Println("profile:")
	fmt.Printf("  avg_daily_range:    %.6f\n", prof.AvgDailyRange)
	fmt.Printf("  spike_probability:  %.4f\n", prof.SpikeProbability)
	fmt.Printf("  reversion_speed:    %.4f\n", prof.ReversionSpeed)
	fmt.Printf("  trend_persistence:  %.4f\n", prof.TrendPersistence)
	fmt.Printf("  session_volatility: asia=%.4f europe=%.4f us=%.4f\n",
		prof.SessionVolatility[0], prof.SessionVolatility[1], prof.SessionVolatility[2])
	fmt.Printf("  samples:            %d\n", prof.SampleCount)
}

type qCell struct {
	state  int
	action int
	value  float64
}

func dumpBrain(name string, snap *brain.Snapshot, top int) {
	var (
		minQ, maxQ float64
		nonZero    int
		cells      []qCell
	)
	for s := 0; s < features.NumStates; s++ {
		for a := 0; a < brain.NumActions; a++ {
			q := snap.Q[s][a]
			if q != 0 {
				nonZero++
				cells = append(cells, qCell{state: s, action: a, value: q})
			}
			if q < minQ {
				minQ = q
			}
			if q > maxQ {
				maxQ = q
			}
		}
	}

	// Selection sort on the small prefix is fine for a dump tool.
	for i := 0; i < len(cells) && i < top; i++ {
		best := i
		for j := i + 1; j < len(cells); j++ {
			if abs(cells[j].value) > abs(cells[best].value) {
				best = j
			}
		}
		cells[i], cells[best] = cells[best], cells[i]
	}

	fmt.Printf("%s brain:\n", name)
	fmt.Printf("  initialized: %v\n", snap.Initialized)
	fmt.Printf("  accuracy:    %.4f\n", snap.Accuracy)
	fmt.Printf("  trades:      %d\n", snap.TradeCount)
	fmt.Printf("  q range:     [%.4f, %.4f], %d non-zero cells\n", minQ, maxQ, nonZero)
	for i := 0; i < len(cells) && i < top; i++ {
		c := cells[i]
		fmt.Printf("  q[%3d][%d] = %+.4f (%s)\n", c.state, c.action, c.value, brain.ActionID(c.action).String())
	}
	fmt.Println()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
