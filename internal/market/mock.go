package market

import (
	"context"
	"log"
	"math/rand"
	"time"

	"adaptive-core/internal/events"
)

// MockFeed generates synthetic bid/ask ticks for local development.
type MockFeed struct {
	Bus        *events.Bus
	Symbols    []string
	StartPrice float64
	Step       float64
	Spread     float64
	Interval   time.Duration
}

func (m *MockFeed) Start(ctx context.Context) {
	if m.Bus == nil {
		log.Println("mock feed: bus not set")
		return
	}
	if len(m.Symbols) == 0 {
		m.Symbols = []string{"BTCUSDT"}
	}
	start := m.StartPrice
	if start == 0 {
		start = 100.0
	}
	if m.Step == 0 {
		m.Step = 0.05
	}
	if m.Spread == 0 {
		m.Spread = 0.02
	}
	if m.Interval == 0 {
		m.Interval = 250 * time.Millisecond
	}

	prices := make(map[string]float64, len(m.Symbols))
	for _, sym := range m.Symbols {
		prices[sym] = start
	}

	go func() {
		t := time.NewTicker(m.Interval)
		defer t.Stop()
		barTick := 0
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				barTick++
				for _, sym := range m.Symbols {
					// simple random walk, floored away from zero
					p := prices[sym] + (rand.Float64()*2-1)*m.Step
					if p < m.Step*10 {
						p = m.Step * 10
					}
					prices[sym] = p
					m.Bus.Publish(events.EventQuoteTick, Quote{
						Symbol: sym,
						Bid:    p - m.Spread/2,
						Ask:    p + m.Spread/2,
						Time:   now,
					})
					if barTick%240 == 0 {
						m.Bus.Publish(events.EventBarClose, Quote{
							Symbol: sym,
							Bid:    p - m.Spread/2,
							Ask:    p + m.Spread/2,
							Time:   now,
						})
					}
				}
			}
		}
	}()
}
