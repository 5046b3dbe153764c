package engine

import (
	"fmt"
	"sort"
	"time"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
	"adaptive-core/internal/gate"
	"adaptive-core/internal/virtual"
)

// Impl implements Service over a fixed set of per-instrument cores. The set
// is built once at startup; cores are never added or removed at runtime.
type Impl struct {
	cores map[string]*Core
	meta  SystemStatus
}

// Config bundles what Impl needs.
type Config struct {
	Cores []*Core
	Meta  SystemStatus
}

// NewImpl creates the service implementation.
func NewImpl(cfg Config) *Impl {
	m := make(map[string]*Core, len(cfg.Cores))
	for _, c := range cfg.Cores {
		m[c.Symbol()] = c
	}
	return &Impl{cores: m, meta: cfg.Meta}
}

func (i *Impl) Symbols() []string {
	out := make([]string, 0, len(i.cores))
	for sym := range i.cores {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func (i *Impl) core(symbol string) (*Core, error) {
	c, ok := i.cores[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %q", symbol)
	}
	return c, nil
}

func (i *Impl) CoreStatus(symbol string) (CoreStatus, error) {
	c, err := i.core(symbol)
	if err != nil {
		return CoreStatus{}, err
	}
	return c.Status(), nil
}

func (i *Impl) AllStatus() []CoreStatus {
	out := make([]CoreStatus, 0, len(i.cores))
	for _, sym := range i.Symbols() {
		out = append(out, i.cores[sym].Status())
	}
	return out
}

func (i *Impl) Decide(symbol string, v features.Vector, tag string) (brain.ActionID, gate.Decision, error) {
	c, err := i.core(symbol)
	if err != nil {
		return brain.ActionHold, gate.Decision{}, err
	}
	action, dec := c.Decide(v, tag)
	return action, dec, nil
}

func (i *Impl) ActiveTrades(symbol string) ([]virtual.Trade, error) {
	c, err := i.core(symbol)
	if err != nil {
		return nil, err
	}
	return c.ActiveTrades(), nil
}

func (i *Impl) SystemStatus() SystemStatus {
	return i.meta
}

func (i *Impl) SaveAll(now time.Time) {
	for _, c := range i.cores {
		_ = c.Save(now)
	}
}
