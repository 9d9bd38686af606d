// Package store provides data persistence interfaces and implementations.
//
// Each repository is the sole path to its entity family's durable state.
// Implementations open a fresh connection per logical operation and close it
// before returning, so no connection state is shared across calls. Absence of
// a row is a normal return (nil pointer or empty slice), never an error; only
// storage-layer faults propagate as errors.
package store

import (
	"context"

	"replay-trainer/internal/models"
)

// SessionRepository persists replay sessions and their candle snapshots.
type SessionRepository interface {
	// Create persists session metadata together with its candle series.
	Create(ctx context.Context, session *models.ReplaySession, candles []models.Candle) error
	// Get returns the session with the given ID, or nil when absent.
	Get(ctx context.Context, id string) (*models.ReplaySession, error)
	// ListAll returns sessions ordered by session date descending, optionally
	// filtered by symbol.
	ListAll(ctx context.Context, symbol string) ([]models.ReplaySession, error)
	// UpdateStatus updates a session's status. Returns false when the ID is
	// unknown.
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) (bool, error)
	// GetCandles returns the persisted candle series for a session, ordered
	// by timestamp ascending.
	GetCandles(ctx context.Context, sessionID string) ([]models.Candle, error)
}

// TradeRepository persists paper trades.
type TradeRepository interface {
	// Create persists a trade and returns its assigned ID (> 0 on success).
	// The trade's session must exist.
	Create(ctx context.Context, trade *models.PaperTrade) (int64, error)
	// Get returns the trade with the given ID, or nil when absent.
	Get(ctx context.Context, id int64) (*models.PaperTrade, error)
	// ListBySession returns the trades recorded against a session, ordered by
	// entry timestamp ascending. No trades is an empty slice, not an error.
	ListBySession(ctx context.Context, sessionID string) ([]models.PaperTrade, error)
	// Update overwrites a trade identified by trade.ID. Returns false, without
	// an error, when the ID is unset or unknown.
	Update(ctx context.Context, trade *models.PaperTrade) (bool, error)
}

// JournalRepository persists journal entries. Entries are append-only.
type JournalRepository interface {
	// Create persists an entry and returns its assigned ID.
	Create(ctx context.Context, entry *models.JournalEntry) (int64, error)
	// ListBySession returns a session's entries ordered by timestamp ascending.
	ListBySession(ctx context.Context, sessionID string) ([]models.JournalEntry, error)
}

// ScoreRepository persists behavioral scores, one row per
// (session, score type).
type ScoreRepository interface {
	// Create upserts a score keyed on (SessionID, ScoreType) and returns the
	// row ID. A second Create for the same key replaces the prior value.
	Create(ctx context.Context, score *models.BehavioralScore) (int64, error)
	// GetBySession returns a session's scores, at most one per score type.
	GetBySession(ctx context.Context, sessionID string) ([]models.BehavioralScore, error)
}

// Repositories bundles the four entity repositories sharing one store.
type Repositories struct {
	Sessions SessionRepository
	Trades   TradeRepository
	Journal  JournalRepository
	Scores   ScoreRepository
}

// NewSQLiteRepositories creates all four SQLite repositories against the same
// database file, initializing the schema once.
func NewSQLiteRepositories(dbPath string) (*Repositories, error) {
	if err := EnsureSchema(dbPath); err != nil {
		return nil, err
	}
	return &Repositories{
		Sessions: &SQLiteSessionRepository{dbPath: dbPath},
		Trades:   &SQLiteTradeRepository{dbPath: dbPath},
		Journal:  &SQLiteJournalRepository{dbPath: dbPath},
		Scores:   &SQLiteScoreRepository{dbPath: dbPath},
	}, nil
}
