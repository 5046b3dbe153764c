package db

import "time"

// Instrument is one configured trading symbol.
type Instrument struct {
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	MinTick    float64   `json:"min_tick"`
	Lot        float64   `json:"lot"`
	Parameters string    `json:"parameters,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Decision is one journaled engine decision.
type Decision struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	StateID    int       `json:"state_id"`
	ActionID   int       `json:"action_id"`
	Brain      string    `json:"brain"`
	Confidence float64   `json:"confidence"`
	Allowed    bool      `json:"allowed"`
	Reason     string    `json:"reason,omitempty"`
	Epsilon    float64   `json:"epsilon"`
	CreatedAt  time.Time `json:"created_at"`
}

// VirtualTrade is one journaled simulated trade.
type VirtualTrade struct {
	Ticket            int64      `json:"ticket"`
	Symbol            string     `json:"symbol"`
	Direction         string     `json:"direction"`
	OpenPrice         float64    `json:"open_price"`
	ClosePrice        float64    `json:"close_price"`
	StopLoss          float64    `json:"stop_loss"`
	TakeProfit        float64    `json:"take_profit"`
	Lot               float64    `json:"lot"`
	Tag               string     `json:"tag,omitempty"`
	StateID           int        `json:"state_id"`
	ActionID          int        `json:"action_id"`
	Brain             string     `json:"brain"`
	Profit            float64    `json:"profit"`
	Reward            float64    `json:"reward"`
	MaxUnrealizedLoss float64    `json:"max_unrealized_loss"`
	CloseReason       string     `json:"close_reason,omitempty"`
	OpenedAt          time.Time  `json:"opened_at"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
}

// OverfitEvent is one journaled detector check result.
type OverfitEvent struct {
	ID              int64     `json:"id"`
	Symbol          string    `json:"symbol"`
	TrainError      float64   `json:"train_error"`
	ValidationError float64   `json:"validation_error"`
	Counter         int       `json:"counter"`
	Flagged         bool      `json:"flagged"`
	CreatedAt       time.Time `json:"created_at"`
}

// User is an API account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
