package virtual

import (
	"math"
	"time"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
)

// Direction of a simulated position.
type Direction int

const (
	DirLong Direction = iota
	DirShort
)

func (d Direction) String() string {
	if d == DirLong {
		return "LONG"
	}
	return "SHORT"
}

// Trade is one simulated position. It only ever generates training signal;
// nothing here reaches a broker. Slots are pooled and reused after a trade
// goes inactive.
type Trade struct {
	Ticket     int64            `json:"ticket"`
	Symbol     string           `json:"symbol"`
	OpenTime   time.Time        `json:"open_time"`
	Direction  Direction        `json:"direction"`
	OpenPrice  float64          `json:"open_price"`
	StopLoss   float64          `json:"stop_loss"`
	TakeProfit float64          `json:"take_profit"`
	Lot        float64          `json:"lot"`
	Tag        string           `json:"tag"`
	Active     bool             `json:"active"`
	State      features.StateID `json:"state_id"`
	Action     brain.ActionID   `json:"action_id"`
	Brain      brain.Kind       `json:"brain_id"`

	// Worst and best unrealized P/L observed while the trade was live.
	MaxUnrealizedLoss   float64 `json:"max_unrealized_loss"`
	MaxUnrealizedProfit float64 `json:"max_unrealized_profit"`

	// Price extremes seen over the trade's life, for range statistics.
	highWater float64
	lowWater  float64

	// Set on close.
	ClosePrice float64   `json:"close_price"`
	CloseTime  time.Time `json:"close_time"`
	Profit     float64   `json:"profit"`
	CloseReason string   `json:"close_reason"`
}

// InitialRisk is the money at risk between entry and stop, floored so the
// R-multiple division downstream never sees zero.
func (t *Trade) InitialRisk(minTickDistance float64) float64 {
	dist := math.Abs(t.OpenPrice - t.StopLoss)
	if dist < minTickDistance {
		dist = minTickDistance
	}
	return dist * t.Lot
}

// DrawdownRatio is adverse excursion relative to initial risk.
func (t *Trade) DrawdownRatio(minTickDistance float64) float64 {
	risk := t.InitialRisk(minTickDistance)
	if risk <= 0 {
		return 0
	}
	return math.Abs(t.MaxUnrealizedLoss) / risk
}

// RangeFraction is the realized high-low range over the trade's life as a
// fraction of the entry price.
func (t *Trade) RangeFraction() float64 {
	if t.OpenPrice <= 0 {
		return 0
	}
	return (t.highWater - t.lowWater) / t.OpenPrice
}

// Engine opens, tracks and closes simulated positions for one instrument.
// No internal locking: the owning engine core serializes access.
type Engine struct {
	symbol     string
	slots      []*Trade
	nextTicket int64
	// MinTickDistance floors the entry-to-stop distance, per instrument.
	MinTickDistance float64
}

// NewEngine creates an empty virtual trading engine for a symbol.
func NewEngine(symbol string, minTickDistance float64) *Engine {
	if minTickDistance <= 0 {
		minTickDistance = 1e-4
	}
	return &Engine{symbol: symbol, MinTickDistance: minTickDistance}
}

// Open allocates a slot (reusing an inactive one if available), assigns a
// monotonic ticket and snapshots the decision context on the record.
func (e *Engine) Open(dir Direction, price, sl, tp, lot float64, tag string, state features.StateID, action brain.ActionID, kind brain.Kind, now time.Time) int64 {
	e.nextTicket++
	t := &Trade{
		Ticket:     e.nextTicket,
		Symbol:     e.symbol,
		OpenTime:   now,
		Direction:  dir,
		OpenPrice:  price,
		StopLoss:   sl,
		TakeProfit: tp,
		Lot:        lot,
		Tag:        tag,
		Active:     true,
		State:      state,
		Action:     action,
		Brain:      kind,
		highWater:  price,
		lowWater:   price,
	}

	for i, slot := range e.slots {
		if !slot.Active {
			e.slots[i] = t
			return t.Ticket
		}
	}
	e.slots = append(e.slots, t)
	return t.Ticket
}

// ManageTick walks every active trade, updates excursion tracking and closes
// trades whose TP or SL was touched. Closed trade snapshots are returned for
// crediting; the slots become reusable immediately.
func (e *Engine) ManageTick(bid, ask float64, now time.Time) []Trade {
	if bid <= 0 || ask <= 0 {
		return nil
	}

	var closed []Trade
	for _, t := range e.slots {
		if !t.Active {
			continue
		}

		// Longs exit on the bid, shorts on the ask.
		mark := bid
		if t.Direction == DirShort {
			mark = ask
		}
		if mark > t.highWater {
			t.highWater = mark
		}
		if mark < t.lowWater {
			t.lowWater = mark
		}

		unreal := (mark - t.OpenPrice) * t.Lot
		if t.Direction == DirShort {
			unreal = -unreal
		}
		if unreal < t.MaxUnrealizedLoss {
			t.MaxUnrealizedLoss = unreal
		}
		if unreal > t.MaxUnrealizedProfit {
			t.MaxUnrealizedProfit = unreal
		}

		closePrice, reason := e.touched(t, bid, ask)
		if closePrice == 0 {
			continue
		}

		t.ClosePrice = closePrice
		t.CloseTime = now
		t.CloseReason = reason
		if t.Direction == DirLong {
			t.Profit = (closePrice - t.OpenPrice) * t.Lot
		} else {
			t.Profit = (t.OpenPrice - closePrice) * t.Lot
		}
		t.Active = false
		closed = append(closed, *t)
	}
	return closed
}

// touched checks TP/SL per direction and returns the fill price, or 0 when
// the trade stays open. Fills assume the touch level, not the tick price.
func (e *Engine) touched(t *Trade, bid, ask float64) (float64, string) {
	if t.Direction == DirLong {
		if t.StopLoss > 0 && bid <= t.StopLoss {
			return t.StopLoss, "stop_loss"
		}
		if t.TakeProfit > 0 && bid >= t.TakeProfit {
			return t.TakeProfit, "take_profit"
		}
		return 0, ""
	}
	if t.StopLoss > 0 && ask >= t.StopLoss {
		return t.StopLoss, "stop_loss"
	}
	if t.TakeProfit > 0 && ask <= t.TakeProfit {
		return t.TakeProfit, "take_profit"
	}
	return 0, ""
}

// ActiveCount returns the number of live trades.
func (e *Engine) ActiveCount() int {
	n := 0
	for _, t := range e.slots {
		if t.Active {
			n++
		}
	}
	return n
}

// ActiveTrades returns snapshots of the live trades.
func (e *Engine) ActiveTrades() []Trade {
	out := make([]Trade, 0, len(e.slots))
	for _, t := range e.slots {
		if t.Active {
			out = append(out, *t)
		}
	}
	return out
}

// PoolSize returns the total slot pool size (active plus reusable).
func (e *Engine) PoolSize() int { return len(e.slots) }
