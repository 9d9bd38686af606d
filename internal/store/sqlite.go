package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// openDB opens a connection to the SQLite database at path. Callers own the
// returned handle and must close it; repositories open one per logical
// operation.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates all required tables and indexes.
func EnsureSchema(dbPath string) error {
	db, err := openDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	schema := `
	-- Replay sessions table
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		session_date DATETIME NOT NULL,
		timeframe TEXT NOT NULL,
		candle_count INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'READY',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Candle snapshot per session
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		UNIQUE(session_id, timestamp),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	-- Paper trades table
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		entry_timestamp DATETIME NOT NULL,
		exit_timestamp DATETIME,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity INTEGER NOT NULL,
		side TEXT NOT NULL,
		entry_type TEXT,
		stop_loss REAL,
		take_profit REAL,
		pnl REAL,
		r_multiple REAL,
		status TEXT NOT NULL DEFAULT 'OPEN',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	-- Journal entries table
	CREATE TABLE IF NOT EXISTS journal_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		candle_index INTEGER NOT NULL,
		entry_type TEXT NOT NULL,
		content TEXT NOT NULL,
		emotion_tag TEXT,
		template_data TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	-- Behavioral scores table, one row per (session, score type)
	CREATE TABLE IF NOT EXISTS behavioral_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		score_type TEXT NOT NULL,
		score_value REAL NOT NULL,
		details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(session_id, score_type),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_sessions_symbol ON sessions(symbol);
	CREATE INDEX IF NOT EXISTS idx_candles_session ON candles(session_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);
	CREATE INDEX IF NOT EXISTS idx_journal_session ON journal_entries(session_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_scores_session ON behavioral_scores(session_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// sessionExists reports whether a session row exists on the given connection.
func sessionExists(db *sql.DB, sessionID string) (bool, error) {
	var one int
	err := db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
