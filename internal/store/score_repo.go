package store

import (
	"context"
	"encoding/json"
	"time"

	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
)

// SQLiteScoreRepository implements ScoreRepository using SQLite.
type SQLiteScoreRepository struct {
	dbPath string
}

// NewSQLiteScoreRepository creates a score repository backed by the SQLite
// database at dbPath, initializing the schema if necessary.
func NewSQLiteScoreRepository(dbPath string) (*SQLiteScoreRepository, error) {
	if err := EnsureSchema(dbPath); err != nil {
		return nil, err
	}
	return &SQLiteScoreRepository{dbPath: dbPath}, nil
}

// Create upserts a score keyed on (SessionID, ScoreType). The unique index on
// the table makes INSERT OR REPLACE overwrite any prior row for the same key.
func (r *SQLiteScoreRepository) Create(ctx context.Context, score *models.BehavioralScore) (int64, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return 0, apperrors.NewStorageError("score.create", err)
	}
	defer db.Close()

	exists, err := sessionExists(db, score.SessionID)
	if err != nil {
		return 0, apperrors.NewStorageError("score.create", err)
	}
	if !exists {
		return 0, apperrors.NewNotFoundError("session", score.SessionID)
	}

	details, err := json.Marshal(score.Details)
	if err != nil {
		return 0, apperrors.NewStorageError("score.create", err)
	}

	createdAt := score.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO behavioral_scores (session_id, score_type, score_value, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, score.SessionID, score.ScoreType, score.ScoreValue, string(details), createdAt)
	if err != nil {
		return 0, apperrors.NewStorageError("score.create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("score.create", err)
	}
	score.ID = id
	return id, nil
}

// GetBySession returns a session's scores in canonical score-type order, at
// most one per type.
func (r *SQLiteScoreRepository) GetBySession(ctx context.Context, sessionID string) ([]models.BehavioralScore, error) {
	db, err := openDB(r.dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("score.get_by_session", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, score_type, score_value, COALESCE(details, '{}'), created_at
		FROM behavioral_scores WHERE session_id = ?
		ORDER BY score_type ASC
	`, sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("score.get_by_session", err)
	}
	defer rows.Close()

	scores := []models.BehavioralScore{}
	for rows.Next() {
		var s models.BehavioralScore
		var detailsJSON string
		if err := rows.Scan(&s.ID, &s.SessionID, &s.ScoreType, &s.ScoreValue, &detailsJSON, &s.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("score.get_by_session", err)
		}
		if err := json.Unmarshal([]byte(detailsJSON), &s.Details); err != nil {
			return nil, apperrors.NewStorageError("score.get_by_session", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("score.get_by_session", err)
	}
	return scores, nil
}
