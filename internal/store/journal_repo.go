package store

import (
	"context"
	"encoding/json"

	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
)

// SQLiteJournalRepository implements JournalRepository using SQLite.
type SQLiteJournalRepository struct {
	dbPath string
}

// NewSQLiteJournalRepository creates a journal repository backed by the
// SQLite database at dbPath, initializing the schema if necessary.
func NewSQLiteJournalRepository(dbPath string) (*SQLiteJournalRepository, error) {
	if err := EnsureSchema(dbPath); err != nil {
		return nil, err
	}
	return &SQLiteJournalRepository{dbPath: dbPath}, nil
}

// Create persists a journal entry and returns its assigned ID. The referenced
// session must exist.
func (r *SQLiteJournalRepository) Create(ctx context.Context, entry *models.JournalEntry) (int64, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return 0, apperrors.NewStorageError("journal.create", err)
	}
	defer db.Close()

	exists, err := sessionExists(db, entry.SessionID)
	if err != nil {
		return 0, apperrors.NewStorageError("journal.create", err)
	}
	if !exists {
		return 0, apperrors.NewNotFoundError("session", entry.SessionID)
	}

	var templateData interface{}
	if entry.TemplateData != nil {
		encoded, err := json.Marshal(entry.TemplateData)
		if err != nil {
			return 0, apperrors.NewStorageError("journal.create", err)
		}
		templateData = string(encoded)
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO journal_entries (session_id, timestamp, candle_index, entry_type, content, emotion_tag, template_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.SessionID, entry.Timestamp, entry.CandleIndex, entry.EntryType, entry.Content,
		entry.EmotionTag, templateData)
	if err != nil {
		return 0, apperrors.NewStorageError("journal.create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("journal.create", err)
	}
	entry.ID = id
	return id, nil
}

// ListBySession returns a session's entries ordered by timestamp ascending.
func (r *SQLiteJournalRepository) ListBySession(ctx context.Context, sessionID string) ([]models.JournalEntry, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("journal.list", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, timestamp, candle_index, entry_type, content,
			COALESCE(emotion_tag, ''), COALESCE(template_data, '')
		FROM journal_entries WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("journal.list", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		var templateJSON string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.CandleIndex, &e.EntryType,
			&e.Content, &e.EmotionTag, &templateJSON); err != nil {
			return nil, apperrors.NewStorageError("journal.list", err)
		}
		if templateJSON != "" {
			if err := json.Unmarshal([]byte(templateJSON), &e.TemplateData); err != nil {
				return nil, apperrors.NewStorageError("journal.list", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("journal.list", err)
	}
	return entries, nil
}
