package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks overall engine performance.
type SystemMetrics struct {
	mu sync.RWMutex

	// Latency histograms
	TickLatency     *LatencyHistogram
	DecisionLatency *LatencyHistogram
	PersistLatency  *LatencyHistogram
	APILatency      *LatencyHistogram

	// Counters
	ticksProcessed uint64
	decisionsMade  uint64
	gateDenials    uint64
	virtualOpens   uint64
	virtualCloses  uint64
	replayPasses   uint64
	overfitAlerts  uint64
	apiRequests    uint64
	apiErrors      uint64
	errorsCount    uint64

	startedAt  time.Time
	lastUpdate time.Time
}

// LatencyHistogram tracks latency samples with a sliding window and lazy
// stats computation.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// LatencyStats is the computed summary of a histogram window.
type LatencyStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min_ms"`
	Max   float64 `json:"max_ms"`
	Avg   float64 `json:"avg_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
}

// NewSystemMetrics creates a new metrics instance.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		TickLatency:     NewLatencyHistogram(1000),
		DecisionLatency: NewLatencyHistogram(1000),
		PersistLatency:  NewLatencyHistogram(100),
		APILatency:      NewLatencyHistogram(1000),
		startedAt:       time.Now(),
		lastUpdate:      time.Now(),
	}
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		// Shift window: remove oldest
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99 over the current window.
// Recomputed only when samples changed since the last call.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		h.cachedStats = LatencyStats{}
		h.dirty = false
		return h.cachedStats
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	sum := 0.0
	for _, s := range sorted {
		sum += s
	}

	h.cachedStats = LatencyStats{
		Count: n,
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[percentileIndex(n, 50)],
		P95:   sorted[percentileIndex(n, 95)],
		P99:   sorted[percentileIndex(n, 99)],
	}
	h.dirty = false
	return h.cachedStats
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Counter increments.

func (m *SystemMetrics) IncrementTicks()         { atomic.AddUint64(&m.ticksProcessed, 1) }
func (m *SystemMetrics) IncrementDecisions()     { atomic.AddUint64(&m.decisionsMade, 1) }
func (m *SystemMetrics) IncrementGateDenials()   { atomic.AddUint64(&m.gateDenials, 1) }
func (m *SystemMetrics) IncrementVirtualOpens()  { atomic.AddUint64(&m.virtualOpens, 1) }
func (m *SystemMetrics) IncrementVirtualCloses() { atomic.AddUint64(&m.virtualCloses, 1) }
func (m *SystemMetrics) IncrementReplayPasses()  { atomic.AddUint64(&m.replayPasses, 1) }
func (m *SystemMetrics) IncrementOverfitAlerts() { atomic.AddUint64(&m.overfitAlerts, 1) }
func (m *SystemMetrics) IncrementAPI()           { atomic.AddUint64(&m.apiRequests, 1) }
func (m *SystemMetrics) IncrementAPIErrors()     { atomic.AddUint64(&m.apiErrors, 1) }
func (m *SystemMetrics) IncrementErrors()        { atomic.AddUint64(&m.errorsCount, 1) }

// MetricsSnapshot is the full metrics view exposed by the API.
type MetricsSnapshot struct {
	TicksProcessed uint64 `json:"ticks_processed"`
	DecisionsMade  uint64 `json:"decisions_made"`
	GateDenials    uint64 `json:"gate_denials"`
	VirtualOpens   uint64 `json:"virtual_opens"`
	VirtualCloses  uint64 `json:"virtual_closes"`
	ReplayPasses   uint64 `json:"replay_passes"`
	OverfitAlerts  uint64 `json:"overfit_alerts"`
	APIRequests    uint64 `json:"api_requests"`
	APIErrors      uint64 `json:"api_errors"`
	Errors         uint64 `json:"errors"`

	TickLatency     LatencyStats `json:"tick_latency"`
	DecisionLatency LatencyStats `json:"decision_latency"`
	PersistLatency  LatencyStats `json:"persist_latency"`
	APILatencyStats LatencyStats `json:"api_latency"`

	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// Snapshot gathers counters, histogram stats and runtime info.
func (m *SystemMetrics) Snapshot() MetricsSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.mu.Lock()
	m.lastUpdate = time.Now()
	started := m.startedAt
	m.mu.Unlock()

	return MetricsSnapshot{
		TicksProcessed:  atomic.LoadUint64(&m.ticksProcessed),
		DecisionsMade:   atomic.LoadUint64(&m.decisionsMade),
		GateDenials:     atomic.LoadUint64(&m.gateDenials),
		VirtualOpens:    atomic.LoadUint64(&m.virtualOpens),
		VirtualCloses:   atomic.LoadUint64(&m.virtualCloses),
		ReplayPasses:    atomic.LoadUint64(&m.replayPasses),
		OverfitAlerts:   atomic.LoadUint64(&m.overfitAlerts),
		APIRequests:     atomic.LoadUint64(&m.apiRequests),
		APIErrors:       atomic.LoadUint64(&m.apiErrors),
		Errors:          atomic.LoadUint64(&m.errorsCount),
		TickLatency:     m.TickLatency.Stats(),
		DecisionLatency: m.DecisionLatency.Stats(),
		PersistLatency:  m.PersistLatency.Stats(),
		APILatencyStats: m.APILatency.Stats(),
		UptimeSeconds:   time.Since(started).Seconds(),
		Goroutines:      runtime.NumGoroutine(),
		HeapAllocMB:     float64(ms.HeapAlloc) / 1024 / 1024,
		NumGC:           ms.NumGC,
	}
}
