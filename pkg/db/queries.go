package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertInstrument inserts or refreshes an instrument row.
func (d *Database) UpsertInstrument(ctx context.Context, ins Instrument) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO instruments (symbol, name, min_tick, lot, parameters, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			min_tick = excluded.min_tick,
			lot = excluded.lot,
			parameters = excluded.parameters,
			is_active = excluded.is_active,
			updated_at = CURRENT_TIMESTAMP
	`, ins.Symbol, ins.Name, ins.MinTick, ins.Lot, ins.Parameters, ins.IsActive)
	if err != nil {
		return fmt.Errorf("upsert instrument %s: %w", ins.Symbol, err)
	}
	return nil
}

// ListInstruments returns all active instruments.
func (d *Database) ListInstruments(ctx context.Context) ([]Instrument, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT symbol, name, min_tick, lot, COALESCE(parameters,''), is_active, created_at, updated_at
		FROM instruments WHERE is_active = 1 ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var out []Instrument
	for rows.Next() {
		var ins Instrument
		if err := rows.Scan(&ins.Symbol, &ins.Name, &ins.MinTick, &ins.Lot,
			&ins.Parameters, &ins.IsActive, &ins.CreatedAt, &ins.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

// ListDecisions returns the most recent journaled decisions for a symbol
// (all symbols when symbol is empty).
func (d *Database) ListDecisions(ctx context.Context, symbol string, limit int) ([]Decision, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT id, symbol, state_id, action_id, brain, confidence, allowed,
		       COALESCE(reason,''), epsilon, created_at
		FROM decisions`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var dec Decision
		var allowed int
		if err := rows.Scan(&dec.ID, &dec.Symbol, &dec.StateID, &dec.ActionID, &dec.Brain,
			&dec.Confidence, &allowed, &dec.Reason, &dec.Epsilon, &dec.CreatedAt); err != nil {
			return nil, err
		}
		dec.Allowed = allowed != 0
		out = append(out, dec)
	}
	return out, rows.Err()
}

// ListVirtualTrades returns recent closed virtual trades for a symbol.
func (d *Database) ListVirtualTrades(ctx context.Context, symbol string, limit int) ([]VirtualTrade, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT ticket, symbol, direction, open_price, close_price, stop_loss, take_profit,
		       lot, COALESCE(tag,''), state_id, action_id, COALESCE(brain,''), profit, reward,
		       max_unrealized_loss, COALESCE(close_reason,''), opened_at, closed_at
		FROM virtual_trades`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY closed_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list virtual trades: %w", err)
	}
	defer rows.Close()

	var out []VirtualTrade
	for rows.Next() {
		var t VirtualTrade
		var closedAt sql.NullTime
		if err := rows.Scan(&t.Ticket, &t.Symbol, &t.Direction, &t.OpenPrice, &t.ClosePrice,
			&t.StopLoss, &t.TakeProfit, &t.Lot, &t.Tag, &t.StateID, &t.ActionID, &t.Brain,
			&t.Profit, &t.Reward, &t.MaxUnrealizedLoss, &t.CloseReason, &t.OpenedAt, &closedAt); err != nil {
			return nil, err
		}
		if closedAt.Valid {
			ts := closedAt.Time
			t.ClosedAt = &ts
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListOverfitEvents returns recent detector events for a symbol.
func (d *Database) ListOverfitEvents(ctx context.Context, symbol string, limit int) ([]OverfitEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, symbol, train_error, validation_error, counter, flagged, created_at
		FROM overfit_events WHERE symbol = ? ORDER BY created_at DESC LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("list overfit events: %w", err)
	}
	defer rows.Close()

	var out []OverfitEvent
	for rows.Next() {
		var e OverfitEvent
		var flagged int
		if err := rows.Scan(&e.ID, &e.Symbol, &e.TrainError, &e.ValidationError,
			&e.Counter, &flagged, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Flagged = flagged != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateUser inserts a new API user.
func (d *Database) CreateUser(ctx context.Context, u User) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up a user; returns (nil, nil) when not found.
func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?
	`, email)

	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// WinRateSince computes the share of profitable virtual trades for a symbol
// closed after the cutoff. Used by the status API, never by the engine.
func (d *Database) WinRateSince(ctx context.Context, symbol string, since time.Time) (float64, int, error) {
	row := d.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN profit > 0 THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM virtual_trades WHERE symbol = ? AND closed_at >= ?
	`, symbol, since)

	var wins, total int
	if err := row.Scan(&wins, &total); err != nil {
		return 0, 0, fmt.Errorf("win rate: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(wins) / float64(total), total, nil
}
