package market

import (
	"context"
	"log"
	"time"

	"adaptive-core/internal/events"
	market "adaptive-core/pkg/market/binance"
)

// Feed streams live prices from Binance and publishes them to the event bus.
// Book ticker updates become quote ticks; final klines become bar closes.
type Feed struct {
	Client   *market.Client
	Stream   *market.StreamClient
	Bus      *events.Bus
	Symbols  []string
	Interval string
}

// Start begins websocket streaming for the configured symbols.
func (f *Feed) Start(ctx context.Context) {
	if f.Bus == nil || f.Client == nil || f.Stream == nil {
		log.Println("market feed not fully configured; skipping start")
		return
	}
	if f.Interval == "" {
		f.Interval = "1m"
	}

	for _, sym := range f.Symbols {
		symbol := sym

		book, stopBook, err := f.Stream.SubscribeBookTicker(ctx, symbol)
		if err != nil {
			log.Printf("market feed: bookTicker subscribe %s error: %v", symbol, err)
			continue
		}
		go func() {
			defer stopBook()
			for bt := range book {
				q := Quote{Symbol: symbol, Bid: bt.BidPrice, Ask: bt.AskPrice, Time: time.Now()}
				if !q.Valid() {
					continue
				}
				f.Bus.Publish(events.EventQuoteTick, q)
			}
		}()

		klines, stopKlines, err := f.Stream.SubscribeKlines(ctx, symbol, f.Interval)
		if err != nil {
			log.Printf("market feed: kline subscribe %s error: %v", symbol, err)
			continue
		}
		go func() {
			defer stopKlines()
			for k := range klines {
				if !k.Closed {
					continue
				}
				f.Bus.Publish(events.EventBarClose, k)
			}
		}()
	}

	// Lightweight polling fallback to avoid gaps in bar closes.
	go f.pollSnapshots(ctx)
}

func (f *Feed) pollSnapshots(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sym := range f.Symbols {
				klines, err := f.Client.GetKlines(sym, f.Interval, 2, 0, 0)
				if err != nil {
					log.Printf("market feed snapshot %s error: %v", sym, err)
					continue
				}
				if len(klines) > 0 {
					f.Bus.Publish(events.EventBarClose, klines[len(klines)-1])
				}
			}
		}
	}
}
