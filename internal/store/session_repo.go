package store

import (
	"context"
	"database/sql"

	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
)

// SQLiteSessionRepository implements SessionRepository using SQLite.
type SQLiteSessionRepository struct {
	dbPath string
}

// NewSQLiteSessionRepository creates a session repository backed by the
// SQLite database at dbPath, initializing the schema if necessary.
func NewSQLiteSessionRepository(dbPath string) (*SQLiteSessionRepository, error) {
	if err := EnsureSchema(dbPath); err != nil {
		return nil, err
	}
	return &SQLiteSessionRepository{dbPath: dbPath}, nil
}

// Create persists session metadata and its candle snapshot in one transaction.
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *models.ReplaySession, candles []models.Candle) error {
	db, err := openDB(r.dbPath)
	if err != nil {
		return apperrors.NewStorageError("session.create", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("session.create", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, symbol, session_date, timeframe, candle_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.Symbol, session.SessionDate, session.Timeframe, session.CandleCount, session.Status, session.CreatedAt)
	if err != nil {
		return apperrors.NewStorageError("session.create", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (session_id, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return apperrors.NewStorageError("session.create", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, session.ID, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return apperrors.NewStorageError("session.create", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("session.create", err)
	}
	return nil
}

// Get returns the session with the given ID, or nil when absent.
func (r *SQLiteSessionRepository) Get(ctx context.Context, id string) (*models.ReplaySession, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("session.get", err)
	}
	defer db.Close()

	var s models.ReplaySession
	err = db.QueryRowContext(ctx, `
		SELECT id, symbol, session_date, timeframe, candle_count, status, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.Symbol, &s.SessionDate, &s.Timeframe, &s.CandleCount, &s.Status, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("session.get", err)
	}
	return &s, nil
}

// ListAll returns sessions ordered by session date descending. An empty
// symbol matches every session.
func (r *SQLiteSessionRepository) ListAll(ctx context.Context, symbol string) ([]models.ReplaySession, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("session.list", err)
	}
	defer db.Close()

	query := `
		SELECT id, symbol, session_date, timeframe, candle_count, status, created_at
		FROM sessions
	`
	args := []interface{}{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY session_date DESC, created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("session.list", err)
	}
	defer rows.Close()

	sessions := []models.ReplaySession{}
	for rows.Next() {
		var s models.ReplaySession
		if err := rows.Scan(&s.ID, &s.Symbol, &s.SessionDate, &s.Timeframe, &s.CandleCount, &s.Status, &s.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("session.list", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("session.list", err)
	}
	return sessions, nil
}

// UpdateStatus updates a session's status. Returns false when the ID is
// unknown.
func (r *SQLiteSessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) (bool, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return false, apperrors.NewStorageError("session.update_status", err)
	}
	defer db.Close()

	result, err := db.ExecContext(ctx, `
		UPDATE sessions SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return false, apperrors.NewStorageError("session.update_status", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetCandles returns the persisted candle series for a session, ordered by
// timestamp ascending.
func (r *SQLiteSessionRepository) GetCandles(ctx context.Context, sessionID string) ([]models.Candle, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("session.get_candles", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles WHERE session_id = ?
		ORDER BY timestamp ASC
	`, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("session.get_candles", err)
	}
	defer rows.Close()

	candles := []models.Candle{}
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, apperrors.NewStorageError("session.get_candles", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("session.get_candles", err)
	}
	return candles, nil
}
