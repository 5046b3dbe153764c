package data

import (
	"context"

	"adaptive-core/internal/virtual"
	market "adaptive-core/pkg/market/binance"
)

const pageLimit = 1000 // max klines per Binance request

// HistoricalDataService fetches historical candles for warm-up training.
type HistoricalDataService struct {
	client *market.Client
}

// NewHistoricalDataService creates a new service instance.
func NewHistoricalDataService(client *market.Client) *HistoricalDataService {
	return &HistoricalDataService{client: client}
}

// GetCandles fetches up to total candles for a symbol and interval, paging
// backwards through history and returning them oldest first.
func (s *HistoricalDataService) GetCandles(ctx context.Context, symbol, interval string, total int) ([]virtual.Candle, error) {
	if total <= 0 || total > virtual.MaxPreTrainCandles {
		total = virtual.MaxPreTrainCandles
	}

	var pages [][]market.Kline
	endTime := int64(0)
	remaining := total
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		limit := remaining
		if limit > pageLimit {
			limit = pageLimit
		}
		klines, err := s.client.GetKlines(symbol, interval, limit, 0, endTime)
		if err != nil {
			return nil, err
		}
		if len(klines) == 0 {
			break
		}
		pages = append(pages, klines)
		remaining -= len(klines)
		endTime = klines[0].OpenTime - 1
		if len(klines) < limit {
			break
		}
	}

	// Pages were fetched newest-to-oldest; stitch them back in order.
	candles := make([]virtual.Candle, 0, total)
	for i := len(pages) - 1; i >= 0; i-- {
		for _, k := range pages[i] {
			candles = append(candles, virtual.Candle{
				Open:   k.Open,
				High:   k.High,
				Low:    k.Low,
				Close:  k.Close,
				Volume: k.Volume,
			})
		}
	}
	return candles, nil
}
