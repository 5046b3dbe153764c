package engine

import (
	"time"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/features"
	"adaptive-core/internal/gate"
	"adaptive-core/internal/virtual"
)

// Service is the engine surface consumed by the API layer. Implementations
// must be safe for concurrent use; the cores serialize internally.
type Service interface {
	// Symbols lists the instruments with a running core.
	Symbols() []string

	// CoreStatus returns the learning state of one instrument core.
	CoreStatus(symbol string) (CoreStatus, error)

	// AllStatus returns every core's status.
	AllStatus() []CoreStatus

	// Decide runs a policy query plus gate check for a proposed trade.
	Decide(symbol string, v features.Vector, tag string) (brain.ActionID, gate.Decision, error)

	// ActiveTrades lists live virtual positions for an instrument.
	ActiveTrades(symbol string) ([]virtual.Trade, error)

	// SystemStatus describes the runtime for the UI.
	SystemStatus() SystemStatus

	// SaveAll persists every core, best-effort.
	SaveAll(now time.Time)
}
