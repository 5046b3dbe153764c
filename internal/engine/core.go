package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/events"
	"adaptive-core/internal/features"
	"adaptive-core/internal/gate"
	"adaptive-core/internal/monitor"
	"adaptive-core/internal/overfit"
	"adaptive-core/internal/persistence"
	"adaptive-core/internal/profile"
	"adaptive-core/internal/replay"
	"adaptive-core/internal/reward"
	"adaptive-core/internal/virtual"
	"adaptive-core/pkg/i18n"
)

// riskDrawdownCeiling is the windowed max drawdown above which the core
// raises a risk alert on the bus.
const riskDrawdownCeiling = 0.2

// tuneStep is an in-flight parameter adaptation awaiting settlement.
type tuneStep struct {
	state      features.StateID
	action     brain.ActionID
	kind       brain.Kind
	before     reward.PerformanceMetrics
	paramDelta float64
}

// Core is the adaptive decision engine for one instrument. It owns both
// brains, the replay buffer, the symbol profile and the tunable influence
// weights, gathered into one injected state struct instead of package
// globals. Every public entry point is serialized behind mu: the engine is
// logically single-threaded and runs each tick to completion.
type Core struct {
	mu sync.Mutex

	symbol  string
	params  Params
	shape   TradeShape
	weights InfluenceWeights

	trend    *brain.Brain
	reversal *brain.Brain
	buffer   *replay.Buffer
	prof     *profile.SymbolProfile
	synth    *features.Synth
	gate     *gate.Gate
	detector *overfit.Detector
	virt     *virtual.Engine
	tracker  *reward.Tracker

	store   *persistence.Store
	journal *persistence.Journal
	bus     *events.Bus
	metrics *monitor.SystemMetrics

	tickCount     int64
	decisionCount int64
	dayStart      time.Time
	dayHigh       float64
	dayLow        float64
	lastRegimeBin int
	haveRegime    bool
	alphaScale    float64
	mitigated     bool
	riskAlerted   bool
	closedTrades  int
	pendingTune   *tuneStep
	lastSave      time.Time
	loadedFromDisk bool
}

// NewCore wires a core from injected collaborators. journal and bus may be
// nil; the core degrades to in-memory operation.
func NewCore(symbol string, params Params, synth *features.Synth, store *persistence.Store, journal *persistence.Journal, bus *events.Bus, metrics *monitor.SystemMetrics) *Core {
	return &Core{
		symbol:     symbol,
		params:     params,
		shape:      DefaultTradeShape(),
		weights:    DefaultInfluence(),
		trend:      brain.New(brain.KindTrend),
		reversal:   brain.New(brain.KindReversal),
		buffer:     replay.New(params.ReplayCapacity),
		prof:       profile.New(symbol),
		synth:      synth,
		gate:       gate.New(params.GateEnabled),
		detector:   overfit.New(),
		virt:       virtual.NewEngine(symbol, params.MinTick),
		tracker:    reward.NewTracker(100, params.BaseEquity),
		store:      store,
		journal:    journal,
		bus:        bus,
		metrics:    metrics,
		alphaScale: 1,
		lastSave:   time.Now(),
	}
}

func (c *Core) Symbol() string { return c.symbol }

// Bootstrap restores persisted state or, failing that, seeds the Q-tables by
// replaying historical candles. Persistence failure is never fatal: the core
// rejects the file and starts fresh.
func (c *Core) Bootstrap(candles []virtual.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.params.PersistEnabled && c.store != nil {
		trendSnap, revSnap, prof, err := c.store.Load(c.symbol)
		if err == nil {
			c.trend.Restore(trendSnap)
			c.reversal.Restore(revSnap)
			c.prof = prof
			c.loadedFromDisk = true
			log.Printf(i18n.Get("BrainLoaded"), c.symbol, c.trend.TradeCount(), c.reversal.TradeCount())
			return
		}
		log.Printf(i18n.Get("BrainLoadFailed"), c.symbol, err)
	}

	if c.params.PretrainEnabled && len(candles) > 0 {
		res := virtual.PreTrain(c.trend, c.reversal, candles, c.effectiveAlpha(), c.params.Gamma)
		if res.Skipped {
			log.Printf(i18n.Get("PretrainSkipped"), c.symbol)
		} else {
			log.Printf(i18n.Get("PretrainDone"), c.symbol, res.Candles, res.Updates)
		}
	}
}

// OnQuote is the single tick entry point. It manages open virtual trades
// against the new bid/ask, then advances the decision loop on schedule.
func (c *Core) OnQuote(bid, ask float64, now time.Time) {
	started := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if bid <= 0 || ask <= 0 {
		// Price unavailable: neutral midpoint substitution keeps the
		// trade management math stable for this tick.
		mid := (bid + ask) / 2
		if mid <= 0 {
			return
		}
		bid, ask = mid, mid
	}

	c.tickCount++
	c.synth.Update(c.symbol, (bid+ask)/2, 1)
	c.observeDailyRange((bid+ask)/2, now)

	for _, closed := range c.virt.ManageTick(bid, ask, now) {
		c.creditClosedTrade(closed)
	}

	if c.params.DecisionEvery > 0 && c.tickCount%int64(c.params.DecisionEvery) == 0 {
		c.decisionStep(bid, ask, now)
	}

	if c.params.PersistEnabled && now.Sub(c.lastSave) >= c.params.AutosaveInterval {
		c.saveLocked(now)
	}

	if c.metrics != nil {
		c.metrics.IncrementTicks()
		c.metrics.TickLatency.RecordDuration(time.Since(started))
	}
}

// OnBar ingests a closed candle (price + volume) into feature synthesis.
func (c *Core) OnBar(close, volume float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if close <= 0 {
		return
	}
	c.synth.Update(c.symbol, close, volume)
	c.observeDailyRange(close, now)
}

// observeDailyRange tracks the running high/low for the current UTC day and
// folds the finished span into the profile when the day rolls over.
func (c *Core) observeDailyRange(price float64, now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	switch {
	case c.dayStart.IsZero():
		c.dayStart, c.dayHigh, c.dayLow = day, price, price
	case day.After(c.dayStart):
		if c.dayLow > 0 {
			c.prof.ObserveDailyRange((c.dayHigh - c.dayLow) / c.dayLow)
		}
		c.dayStart, c.dayHigh, c.dayLow = day, price, price
	default:
		if price > c.dayHigh {
			c.dayHigh = price
		}
		if price < c.dayLow {
			c.dayLow = price
		}
	}
}

// SetExternal forwards collaborator-supplied feature components.
func (c *Core) SetExternal(ext features.External) {
	c.synth.SetExternal(c.symbol, ext)
}

// Decide runs a gate check for an externally proposed trade and returns the
// policy's action alongside the decision. This is the collaborator-facing
// entry: the engine emits an action and a gate verdict, nothing else.
func (c *Core) Decide(v features.Vector, tag string) (brain.ActionID, gate.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v = v.Clamp()
	perf := c.tracker.Compute()
	state := features.Encode(c.weighted(v), perf.PerformanceScore)

	kind := brain.KindFromTag(tag)
	b := c.brainFor(kind)
	action := b.SelectAction(state)
	dec := c.gate.Check(tag, v, b, c.prof)

	c.journalDecision(state, action, kind, dec)
	if c.bus != nil && !dec.Allowed {
		c.bus.Publish(events.EventGateDenied, dec)
	}
	if c.metrics != nil && !dec.Allowed {
		c.metrics.IncrementGateDenials()
	}
	return action, dec
}

// decisionStep advances the internal learning loop by one step.
func (c *Core) decisionStep(bid, ask float64, now time.Time) {
	started := time.Now()
	c.decisionCount++

	perf := c.tracker.Compute()
	v := c.synth.Vector(c.symbol, now)
	state := features.Encode(c.weighted(v), perf.PerformanceScore)

	// Exploration restart when the regime bucket moves.
	regime := features.RegimeBin(v)
	if c.haveRegime && regime != c.lastRegimeBin {
		c.trend.BoostCuriosity()
		c.reversal.BoostCuriosity()
		log.Printf(i18n.Get("RegimeShift"), c.symbol, c.lastRegimeBin, regime)
	}
	c.lastRegimeBin = regime
	c.haveRegime = true

	kind := brain.KindForFeatures(v.TrendStrength)
	b := c.brainFor(kind)
	action := b.SelectAction(state)
	b.DecayEpsilon()

	switch action {
	case brain.ActionEnterLong, brain.ActionEnterShort:
		c.tryOpen(action, kind, state, v, bid, ask, now)
	case brain.ActionHold:
		// nothing to do
	default:
		c.applyNudge(action, kind, state, perf)
	}

	if c.params.ReplayEvery > 0 && c.decisionCount%int64(c.params.ReplayEvery) == 0 {
		c.replayPass()
	}
	if c.params.OverfitEvery > 0 && c.decisionCount%int64(c.params.OverfitEvery) == 0 {
		c.overfitCheck(now)
	}

	if c.metrics != nil {
		c.metrics.IncrementDecisions()
		c.metrics.DecisionLatency.RecordDuration(time.Since(started))
	}
	if c.bus != nil {
		c.bus.Publish(events.EventDecision, struct {
			Symbol string
			State  int
			Action string
			Brain  string
		}{c.symbol, int(state), action.String(), kind.String()})
	}
}

// tryOpen runs the entry through the confidence gate and opens a virtual
// position when allowed.
func (c *Core) tryOpen(action brain.ActionID, kind brain.Kind, state features.StateID, v features.Vector, bid, ask float64, now time.Time) {
	tag := kind.String()
	if v.MarketRegime > 0.8 {
		tag += "-breakout"
	}

	b := c.brainFor(kind)
	dec := c.gate.Check(tag, v, b, c.prof)
	c.journalDecision(state, action, kind, dec)
	if !dec.Allowed {
		log.Printf(i18n.Get("GateDenied"), c.symbol, dec.Reason)
		if c.metrics != nil {
			c.metrics.IncrementGateDenials()
		}
		if c.bus != nil {
			c.bus.Publish(events.EventGateDenied, dec)
		}
		return
	}

	dir := virtual.DirLong
	price := ask
	if action == brain.ActionEnterShort {
		dir = virtual.DirShort
		price = bid
	}

	// Stop distance widens with volatility; target follows the tuned
	// reward:risk ratio.
	dist := price * c.shape.StopFraction * (0.5 + v.Volatility)
	if dist < c.params.MinTick*10 {
		dist = c.params.MinTick * 10
	}
	var sl, tp float64
	if dir == virtual.DirLong {
		sl = price - dist
		tp = price + dist*c.shape.TargetRatio
	} else {
		sl = price + dist
		tp = price - dist*c.shape.TargetRatio
	}

	lot := c.params.Lot * c.shape.LotScale
	ticket := c.virt.Open(dir, price, sl, tp, lot, tag, state, action, kind, now)
	log.Printf(i18n.Get("VirtualOpened"), c.symbol, ticket, dir.String(), price, sl, tp)

	if c.metrics != nil {
		c.metrics.IncrementVirtualOpens()
	}
	if c.bus != nil {
		c.bus.Publish(events.EventVirtualOpened, struct {
			Symbol string
			Ticket int64
			Dir    string
		}{c.symbol, ticket, dir.String()})
	}
	if c.journal != nil && c.params.JournalEnabled {
		c.journal.WriteQuery(`
			INSERT INTO virtual_trades (ticket, symbol, direction, open_price, stop_loss, take_profit, lot, tag, state_id, action_id, brain, opened_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol, ticket) DO NOTHING`,
			ticket, c.symbol, dir.String(), price, sl, tp, lot, tag, int(state), int(action), kind.String(), now)
	}
}

// applyNudge executes a parameter-adaptation action and, on schedule,
// settles the previous one with the tuning reward.
func (c *Core) applyNudge(action brain.ActionID, kind brain.Kind, state features.StateID, perf reward.PerformanceMetrics) {
	before := c.shape
	beforeW := c.weights
	// Each nudge moves one trade-construction parameter and the influence
	// weight it answers to: stops live off volatility, targets off trend,
	// sizing off momentum with risk as its counterweight.
	switch action {
	case brain.ActionWidenStop:
		c.shape.StopFraction *= 1.1
		c.weights.Volatility *= 1.05
	case brain.ActionTightenStop:
		c.shape.StopFraction *= 0.9
		c.weights.Volatility *= 0.95
	case brain.ActionExtendTarget:
		c.shape.TargetRatio *= 1.1
		c.weights.Trend *= 1.05
	case brain.ActionTrimTarget:
		c.shape.TargetRatio *= 0.9
		c.weights.Trend *= 0.95
	case brain.ActionScaleUp:
		c.shape.LotScale *= 1.1
		c.weights.Momentum *= 1.05
		c.weights.Risk *= 0.95
	case brain.ActionScaleDown:
		c.shape.LotScale *= 0.9
		c.weights.Momentum *= 0.95
		c.weights.Risk *= 1.05
	}
	c.shape = clampShape(c.shape)
	c.weights = clampWeights(c.weights)

	delta := relDelta(before.StopFraction, c.shape.StopFraction) +
		relDelta(before.TargetRatio, c.shape.TargetRatio) +
		relDelta(before.LotScale, c.shape.LotScale) +
		relDelta(beforeW.Trend, c.weights.Trend) +
		relDelta(beforeW.Volatility, c.weights.Volatility) +
		relDelta(beforeW.Momentum, c.weights.Momentum) +
		relDelta(beforeW.Risk, c.weights.Risk)

	// One pending adaptation at a time; a newer nudge folds its delta into
	// the pending step so oscillation is still penalized.
	if c.pendingTune == nil {
		c.pendingTune = &tuneStep{state: state, action: action, kind: kind, before: perf, paramDelta: delta}
	} else {
		c.pendingTune.paramDelta += delta
	}
}

// settleTune scores the pending adaptation against metrics movement since it
// was applied and feeds the result back as a terminal experience.
func (c *Core) settleTune() {
	if c.pendingTune == nil {
		return
	}
	step := c.pendingTune
	c.pendingTune = nil

	cur := c.tracker.Compute()
	r := reward.Tuning(step.before, cur, step.paramDelta)

	b := c.brainFor(step.kind)
	td := b.Update(step.state, step.action, r, step.state, true, c.effectiveAlpha(), c.params.Gamma)
	c.buffer.StoreTD(step.kind, step.state, step.action, r, step.state, true, td)
}

// creditClosedTrade converts a closed virtual trade into training signal:
// sniper reward, eligibility-trace credit, replay storage, profile update.
func (c *Core) creditClosedTrade(t virtual.Trade) {
	risk := t.InitialRisk(c.params.MinTick)
	r := reward.Sniper(t.Profit, risk, t.MaxUnrealizedLoss)

	b := c.brainFor(t.Brain)
	b.RecordOutcome(t.Profit)

	// Priority is the surprise before credit is applied.
	prio := r - b.QValue(t.State, t.Action)
	b.CreditTrade(t.State, t.Action, r, c.effectiveAlpha(), c.params.Gamma, c.params.Lambda)
	c.buffer.StoreTD(t.Brain, t.State, t.Action, r, t.State, true, prio)

	c.tracker.Add(t.Profit)
	c.checkRiskAlert()
	c.prof.Observe(profile.TradeObservation{
		ClosedAt:      t.CloseTime,
		DrawdownRatio: t.DrawdownRatio(c.params.MinTick),
		TrendWin:      t.Brain == brain.KindTrend && t.Profit > 0,
		ReversalWin:   t.Brain == brain.KindReversal && t.Profit > 0,
		RangeFraction: t.RangeFraction(),
	})

	c.closedTrades++
	if c.params.TuneEvery > 0 && c.closedTrades%c.params.TuneEvery == 0 {
		c.settleTune()
	}

	if c.metrics != nil {
		c.metrics.IncrementVirtualCloses()
	}
	if c.bus != nil {
		c.bus.Publish(events.EventVirtualClosed, t)
	}
	if c.journal != nil && c.params.JournalEnabled {
		c.journal.WriteQuery(`
			UPDATE virtual_trades SET close_price = ?, profit = ?, reward = ?,
				max_unrealized_loss = ?, close_reason = ?, closed_at = ?
			WHERE symbol = ? AND ticket = ?`,
			t.ClosePrice, t.Profit, r, t.MaxUnrealizedLoss, t.CloseReason, t.CloseTime,
			c.symbol, t.Ticket)
	}
	log.Printf(i18n.Get("VirtualClosed"), c.symbol, t.Ticket, t.CloseReason, t.Profit, r)
}

// checkRiskAlert raises a risk alert on the rising edge of excessive
// windowed drawdown and clears it once the drawdown recovers.
func (c *Core) checkRiskAlert() {
	perf := c.tracker.Compute()
	if perf.MaxDrawdown > riskDrawdownCeiling && !c.riskAlerted {
		c.riskAlerted = true
		log.Printf(i18n.Get("RiskAlert"), c.symbol, perf.MaxDrawdown*100, riskDrawdownCeiling*100)
		if c.bus != nil {
			c.bus.Publish(events.EventRiskAlert,
				fmt.Sprintf("%s drawdown %.1f%%", c.symbol, perf.MaxDrawdown*100))
		}
		return
	}
	if perf.MaxDrawdown <= riskDrawdownCeiling && c.riskAlerted {
		c.riskAlerted = false
		log.Printf(i18n.Get("RiskCleared"), c.symbol, perf.MaxDrawdown*100)
	}
}

// replayPass learns from a prioritized sample and re-prices what it touched.
func (c *Core) replayPass() {
	idxs := c.buffer.Sample(c.params.BatchSize)
	for _, i := range idxs {
		e := c.buffer.Get(i)
		b := c.brainFor(e.Brain)
		td := b.Update(e.State, e.Action, e.Reward, e.NextState, e.Terminal, c.effectiveAlpha(), c.params.Gamma)
		c.buffer.RefreshPriority(i, td)
	}
	if c.metrics != nil && len(idxs) > 0 {
		c.metrics.IncrementReplayPasses()
	}
}

// overfitCheck runs the detector and applies mitigation on the rising edge
// of the flag: halve the effective learning rate, prune the stalest quarter
// of the buffer.
func (c *Core) overfitCheck(now time.Time) {
	res := c.detector.Check(c.buffer.Ordered(), func(e replay.Experience) float64 {
		return c.brainFor(e.Brain).QValue(e.State, e.Action)
	})
	if !res.Checked {
		return
	}

	if res.Flagged && !c.mitigated {
		c.alphaScale = 0.5
		pruned := c.buffer.PruneOldest(0.25)
		c.mitigated = true
		log.Printf(i18n.Get("OverfitMitigation"), c.symbol, res.ValidationError, res.TrainError, pruned)
		if c.metrics != nil {
			c.metrics.IncrementOverfitAlerts()
		}
		if c.bus != nil {
			c.bus.Publish(events.EventOverfitAlert, res)
		}
	}
	if !res.Flagged && c.mitigated {
		c.alphaScale = 1
		c.mitigated = false
		log.Printf(i18n.Get("OverfitCleared"), c.symbol)
	}

	if c.journal != nil && c.params.JournalEnabled {
		c.journal.WriteQuery(`
			INSERT INTO overfit_events (symbol, train_error, validation_error, counter, flagged, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.symbol, res.TrainError, res.ValidationError, res.Counter, boolToInt(res.Flagged), now)
	}
}

// Save persists both brains and the profile. Best-effort by contract.
func (c *Core) Save(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked(now)
}

func (c *Core) saveLocked(now time.Time) error {
	if c.store == nil {
		return nil
	}
	started := time.Now()
	err := c.store.Save(c.symbol, c.trend.Export(), c.reversal.Export(), c.prof)
	if err != nil {
		log.Printf(i18n.Get("BrainSaveFailed"), c.symbol, err)
		if c.metrics != nil {
			c.metrics.IncrementErrors()
		}
		return err
	}
	c.lastSave = now
	if c.metrics != nil {
		c.metrics.PersistLatency.RecordDuration(time.Since(started))
	}
	if c.bus != nil {
		c.bus.Publish(events.EventBrainSaved, c.symbol)
	}
	if c.journal != nil && c.params.JournalEnabled {
		c.journal.WriteQuery(`
			INSERT INTO brain_saves (symbol, path, trend_trades, reversal_trades, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.symbol, c.store.Path(c.symbol), c.trend.TradeCount(), c.reversal.TradeCount(), now)
	}
	log.Printf(i18n.Get("BrainSaved"), c.symbol, c.store.Path(c.symbol))
	return nil
}

// Status snapshots the core for the API.
func (c *Core) Status() CoreStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CoreStatus{
		Symbol:        c.symbol,
		Trend:         brainStatus(c.trend),
		Reversal:      brainStatus(c.reversal),
		BufferLen:     c.buffer.Len(),
		BufferCap:     c.buffer.Capacity(),
		ActiveTrades:  c.virt.ActiveCount(),
		PoolSize:      c.virt.PoolSize(),
		Ticks:         c.tickCount,
		Decisions:     c.decisionCount,
		Performance:   c.tracker.Compute(),
		Shape:         c.shape,
		Influence:     c.weights,
		OverfitFlag:   c.detector.Flagged(),
		AlphaEff:      c.effectiveAlpha(),
		SpikeProb:     c.prof.SpikeProbability,
		ProfileSample: c.prof.SampleCount,
		LastSave:      c.lastSave,
	}
}

// ActiveTrades exposes the live virtual positions.
func (c *Core) ActiveTrades() []virtual.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.virt.ActiveTrades()
}

func (c *Core) brainFor(kind brain.Kind) *brain.Brain {
	if kind == brain.KindTrend {
		return c.trend
	}
	return c.reversal
}

func (c *Core) effectiveAlpha() float64 {
	return c.params.Alpha * c.alphaScale
}

// weighted rescales the influence-weighted features around the neutral
// midpoint before encoding. A weight above 1 stretches the feature's
// deviation from 0.5 so it crosses bin thresholds sooner; below 1 dampens it.
func (c *Core) weighted(v features.Vector) features.Vector {
	v.TrendStrength = rescale(v.TrendStrength, c.weights.Trend)
	v.Volatility = rescale(v.Volatility, c.weights.Volatility)
	v.Momentum = rescale(v.Momentum, c.weights.Momentum)
	v.RiskSentiment = rescale(v.RiskSentiment, c.weights.Risk)
	return v
}

func rescale(x, w float64) float64 {
	return clampRange(0.5+(x-0.5)*w, 0, 1)
}

func (c *Core) journalDecision(state features.StateID, action brain.ActionID, kind brain.Kind, dec gate.Decision) {
	if c.journal == nil || !c.params.JournalEnabled {
		return
	}
	c.journal.WriteQuery(`
		INSERT INTO decisions (id, symbol, state_id, action_id, brain, confidence, allowed, reason, epsilon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), c.symbol, int(state), int(action), kind.String(),
		dec.Confidence, boolToInt(dec.Allowed), dec.Reason, c.brainFor(kind).Epsilon(), time.Now())
}

func brainStatus(b *brain.Brain) BrainStatus {
	return BrainStatus{
		Kind:        b.Kind().String(),
		Accuracy:    b.Accuracy(),
		TradeCount:  b.TradeCount(),
		Epsilon:     b.Epsilon(),
		Initialized: b.Initialized(),
	}
}

func clampWeights(w InfluenceWeights) InfluenceWeights {
	w.Trend = clampRange(w.Trend, 0.5, 1.5)
	w.Volatility = clampRange(w.Volatility, 0.5, 1.5)
	w.Momentum = clampRange(w.Momentum, 0.5, 1.5)
	w.Risk = clampRange(w.Risk, 0.5, 1.5)
	return w
}

func clampShape(s TradeShape) TradeShape {
	s.StopFraction = clampRange(s.StopFraction, 0.001, 0.05)
	s.TargetRatio = clampRange(s.TargetRatio, 0.5, 4)
	s.LotScale = clampRange(s.LotScale, 0.25, 4)
	return s
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func relDelta(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	d := (after - before) / before
	if d < 0 {
		return -d
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
