package reward

import "math"

// PerformanceMetrics is a derived view over recent closed trades. It is
// recomputed from history, never authoritative state, and only feeds the
// tuning reward and the encoder's performance digit.
type PerformanceMetrics struct {
	PerformanceScore  float64 `json:"performance_score"`
	WinRate           float64 `json:"win_rate"`
	ProfitFactor      float64 `json:"profit_factor"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	Sharpe            float64 `json:"sharpe"`
	ConsecutiveWins   int     `json:"consecutive_wins"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	Trades            int     `json:"trades"`
}

// Tracker accumulates closed-trade results into a sliding window and
// recomputes PerformanceMetrics on demand.
type Tracker struct {
	pnls       []float64
	maxWindow  int
	baseEquity float64
}

// NewTracker creates a tracker. baseEquity normalizes drawdown and Sharpe;
// it defaults to 10000 when not positive.
func NewTracker(window int, baseEquity float64) *Tracker {
	if window <= 0 {
		window = 100
	}
	if baseEquity <= 0 {
		baseEquity = 10000
	}
	return &Tracker{maxWindow: window, baseEquity: baseEquity}
}

// Add records one closed trade's net PnL.
func (t *Tracker) Add(pnl float64) {
	t.pnls = append(t.pnls, pnl)
	if len(t.pnls) > t.maxWindow {
		t.pnls = t.pnls[len(t.pnls)-t.maxWindow:]
	}
}

// Compute derives the current metrics from the window.
func (t *Tracker) Compute() PerformanceMetrics {
	m := PerformanceMetrics{Trades: len(t.pnls)}
	if len(t.pnls) == 0 {
		m.PerformanceScore = 0.5
		return m
	}

	wins := 0
	grossWin := 0.0
	grossLoss := 0.0
	equity := t.baseEquity
	peak := t.baseEquity
	for _, p := range t.pnls {
		if p > 0 {
			wins++
			grossWin += p
		} else {
			grossLoss -= p
		}
		equity += p
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak
			if dd > m.MaxDrawdown {
				m.MaxDrawdown = dd
			}
		}
	}
	m.WinRate = float64(wins) / float64(len(t.pnls))

	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		m.ProfitFactor = 10 // no losing trades yet; cap rather than Inf
	} else {
		m.ProfitFactor = 1
	}

	m.Sharpe = sharpe(t.pnls, t.baseEquity)

	for i := len(t.pnls) - 1; i >= 0; i-- {
		if t.pnls[i] > 0 {
			if m.ConsecutiveLosses > 0 {
				break
			}
			m.ConsecutiveWins++
		} else {
			if m.ConsecutiveWins > 0 {
				break
			}
			m.ConsecutiveLosses++
		}
	}

	// Composite score in [0,1] used by the state encoder.
	pf := m.ProfitFactor / 2
	if pf > 1 {
		pf = 1
	}
	ddScore := 1 - m.MaxDrawdown/0.2
	if ddScore < 0 {
		ddScore = 0
	}
	m.PerformanceScore = 0.4*m.WinRate + 0.3*pf + 0.3*ddScore

	return m
}

func sharpe(pnls []float64, base float64) float64 {
	if len(pnls) < 2 || base <= 0 {
		return 0
	}
	mean := 0.0
	for _, p := range pnls {
		mean += p / base
	}
	mean /= float64(len(pnls))

	varsum := 0.0
	for _, p := range pnls {
		d := p/base - mean
		varsum += d * d
	}
	std := math.Sqrt(varsum / float64(len(pnls)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(float64(len(pnls)))
}
