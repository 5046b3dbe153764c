package monitor

import (
	"math"
	"testing"
	"time"
)

func TestHistogramStats(t *testing.T) {
	h := NewLatencyHistogram(100)
	for i := 1; i <= 10; i++ {
		h.Record(float64(i))
	}

	s := h.Stats()
	if s.Count != 10 {
		t.Fatalf("Count=%d want 10", s.Count)
	}
	if s.Min != 1 || s.Max != 10 {
		t.Fatalf("Min=%v Max=%v want 1/10", s.Min, s.Max)
	}
	if math.Abs(s.Avg-5.5) > 1e-12 {
		t.Fatalf("Avg=%v want 5.5", s.Avg)
	}
	// Index-based percentiles: p50 -> sorted[5], p95 -> sorted[9].
	if s.P50 != 6 {
		t.Fatalf("P50=%v want 6", s.P50)
	}
	if s.P95 != 10 || s.P99 != 10 {
		t.Fatalf("P95=%v P99=%v want 10/10", s.P95, s.P99)
	}
}

func TestHistogramEmpty(t *testing.T) {
	h := NewLatencyHistogram(10)
	if s := h.Stats(); s != (LatencyStats{}) {
		t.Fatalf("empty stats=%+v want zero value", s)
	}
}

func TestHistogramSlidingWindow(t *testing.T) {
	h := NewLatencyHistogram(3)
	for i := 1; i <= 5; i++ {
		h.Record(float64(i))
	}
	s := h.Stats()
	if s.Count != 3 {
		t.Fatalf("Count=%d want window size 3", s.Count)
	}
	// Oldest samples 1 and 2 were shifted out.
	if s.Min != 3 || s.Max != 5 {
		t.Fatalf("Min=%v Max=%v want 3/5", s.Min, s.Max)
	}
}

func TestHistogramStatsCache(t *testing.T) {
	h := NewLatencyHistogram(10)
	h.Record(4)
	first := h.Stats()
	// No new samples: the cached struct comes back unchanged.
	if second := h.Stats(); second != first {
		t.Fatalf("cached stats drifted: %+v vs %+v", second, first)
	}

	h.Record(8)
	third := h.Stats()
	if third.Count != 2 || third.Max != 8 {
		t.Fatalf("stats not recomputed after new sample: %+v", third)
	}
}

func TestRecordDuration(t *testing.T) {
	h := NewLatencyHistogram(10)
	h.RecordDuration(1500 * time.Microsecond)
	if s := h.Stats(); math.Abs(s.Max-1.5) > 1e-9 {
		t.Fatalf("Max=%v want 1.5ms", s.Max)
	}
}

func TestPercentileIndex(t *testing.T) {
	cases := []struct {
		n, p, want int
	}{
		{10, 50, 5},
		{10, 99, 9},
		{1, 99, 0},
		{100, 100, 99},
		{4, 95, 3},
	}
	for _, tc := range cases {
		if got := percentileIndex(tc.n, tc.p); got != tc.want {
			t.Fatalf("percentileIndex(%d, %d)=%d want %d", tc.n, tc.p, got, tc.want)
		}
	}
}

func TestSnapshotCounters(t *testing.T) {
	m := NewSystemMetrics()
	m.IncrementTicks()
	m.IncrementTicks()
	m.IncrementDecisions()
	m.IncrementGateDenials()
	m.IncrementVirtualOpens()
	m.IncrementVirtualCloses()
	m.IncrementReplayPasses()
	m.IncrementOverfitAlerts()
	m.IncrementAPI()
	m.IncrementAPIErrors()
	m.IncrementErrors()
	m.TickLatency.Record(2)

	s := m.Snapshot()
	if s.TicksProcessed != 2 || s.DecisionsMade != 1 || s.GateDenials != 1 {
		t.Fatalf("counters=%+v", s)
	}
	if s.VirtualOpens != 1 || s.VirtualCloses != 1 || s.ReplayPasses != 1 || s.OverfitAlerts != 1 {
		t.Fatalf("engine counters=%+v", s)
	}
	if s.APIRequests != 1 || s.APIErrors != 1 || s.Errors != 1 {
		t.Fatalf("api counters=%+v", s)
	}
	if s.TickLatency.Count != 1 {
		t.Fatalf("TickLatency.Count=%d want 1", s.TickLatency.Count)
	}
	if s.Goroutines <= 0 {
		t.Fatalf("Goroutines=%d", s.Goroutines)
	}
}
