package events

// Event enumerates high-level topics inside the adaptive core.
type Event string

const (
	EventQuoteTick     Event = "quote_tick"
	EventBarClose      Event = "bar_close"
	EventDecision      Event = "engine.decision"
	EventGateDenied    Event = "engine.gate_denied"
	EventVirtualOpened Event = "trade.virtual_opened"
	EventVirtualClosed Event = "trade.virtual_closed"
	EventOverfitAlert  Event = "engine.overfit_alert"
	EventBrainSaved    Event = "engine.brain_saved"
	EventRiskAlert     Event = "risk_alert"
)
