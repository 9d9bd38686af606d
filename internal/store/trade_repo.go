package store

import (
	"context"
	"database/sql"
	"time"

	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
)

// SQLiteTradeRepository implements TradeRepository using SQLite.
type SQLiteTradeRepository struct {
	dbPath string
}

// NewSQLiteTradeRepository creates a trade repository backed by the SQLite
// database at dbPath, initializing the schema if necessary.
func NewSQLiteTradeRepository(dbPath string) (*SQLiteTradeRepository, error) {
	if err := EnsureSchema(dbPath); err != nil {
		return nil, err
	}
	return &SQLiteTradeRepository{dbPath: dbPath}, nil
}

const tradeColumns = `id, session_id, entry_timestamp, exit_timestamp, entry_price, exit_price,
	quantity, side, entry_type, stop_loss, take_profit, pnl, r_multiple, status`

// Create persists a trade and returns its assigned ID. The referenced
// session must exist.
func (r *SQLiteTradeRepository) Create(ctx context.Context, trade *models.PaperTrade) (int64, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return 0, apperrors.NewStorageError("trade.create", err)
	}
	defer db.Close()

	exists, err := sessionExists(db, trade.SessionID)
	if err != nil {
		return 0, apperrors.NewStorageError("trade.create", err)
	}
	if !exists {
		return 0, apperrors.NewNotFoundError("session", trade.SessionID)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO trades (session_id, entry_timestamp, exit_timestamp, entry_price, exit_price,
			quantity, side, entry_type, stop_loss, take_profit, pnl, r_multiple, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.SessionID, trade.EntryTimestamp, nullTime(trade.ExitTimestamp), trade.EntryPrice,
		nullFloat(trade.ExitPrice), trade.Quantity, trade.Side, trade.EntryType,
		nullFloat(trade.StopLoss), nullFloat(trade.TakeProfit), nullFloat(trade.PnL),
		nullFloat(trade.RMultiple), trade.Status)
	if err != nil {
		return 0, apperrors.NewStorageError("trade.create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("trade.create", err)
	}
	trade.ID = id
	return id, nil
}

// Get returns the trade with the given ID, or nil when absent.
func (r *SQLiteTradeRepository) Get(ctx context.Context, id int64) (*models.PaperTrade, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("trade.get", err)
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("trade.get", err)
	}
	return trade, nil
}

// ListBySession returns the trades recorded against a session, ordered by
// entry timestamp ascending.
func (r *SQLiteTradeRepository) ListBySession(ctx context.Context, sessionID string) ([]models.PaperTrade, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("trade.list", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT `+tradeColumns+` FROM trades WHERE session_id = ? ORDER BY entry_timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("trade.list", err)
	}
	defer rows.Close()

	trades := []models.PaperTrade{}
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("trade.list", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("trade.list", err)
	}
	return trades, nil
}

// Update overwrites a trade identified by trade.ID. An unset or unknown ID is
// reported as false, not as an error: there is nothing to match against.
func (r *SQLiteTradeRepository) Update(ctx context.Context, trade *models.PaperTrade) (bool, error) {
	if trade.ID == 0 {
		return false, nil
	}

	db, err := openDB(r.dbPath)
	if err != nil {
		return false, apperrors.NewStorageError("trade.update", err)
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
		UPDATE trades SET exit_timestamp = ?, exit_price = ?, stop_loss = ?, take_profit = ?,
			pnl = ?, r_multiple = ?, status = ?
		WHERE id = ?
	`, nullTime(trade.ExitTimestamp), nullFloat(trade.ExitPrice), nullFloat(trade.StopLoss),
		nullFloat(trade.TakeProfit), nullFloat(trade.PnL), nullFloat(trade.RMultiple),
		trade.Status, trade.ID)
	if err != nil {
		return false, apperrors.NewStorageError("trade.update", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (*models.PaperTrade, error) {
	var t models.PaperTrade
	var exitTS sql.NullTime
	var exitPrice, stopLoss, takeProfit, pnl, rMultiple sql.NullFloat64
	var entryType sql.NullString

	err := s.Scan(&t.ID, &t.SessionID, &t.EntryTimestamp, &exitTS, &t.EntryPrice, &exitPrice,
		&t.Quantity, &t.Side, &entryType, &stopLoss, &takeProfit, &pnl, &rMultiple, &t.Status)
	if err != nil {
		return nil, err
	}

	t.EntryType = entryType.String
	t.ExitTimestamp = timePtr(exitTS)
	t.ExitPrice = floatPtr(exitPrice)
	t.StopLoss = floatPtr(stopLoss)
	t.TakeProfit = floatPtr(takeProfit)
	t.PnL = floatPtr(pnl)
	t.RMultiple = floatPtr(rMultiple)
	return &t, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
