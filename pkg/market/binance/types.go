package market

// Kline represents a single candlestick.
type Kline struct {
	Symbol    string
	OpenTime  int64 // ms
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime int64 // ms
	Closed    bool  // true once the candle is final
}

// BookTicker holds the best bid/ask for a symbol.
type BookTicker struct {
	Symbol   string
	BidPrice float64
	BidQty   float64
	AskPrice float64
	AskQty   float64
}

// Ticker holds lightweight last-price info for streaming.
type Ticker struct {
	Symbol string
	Price  float64
	Time   int64
}
