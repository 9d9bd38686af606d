package replay

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
	"replay-trainer/internal/store"
)

// StepDirection selects the direction of a single replay step.
type StepDirection string

const (
	StepForward  StepDirection = "forward"
	StepBackward StepDirection = "backward"
)

// Engine owns the in-memory state of active replay sessions and coordinates
// session lifecycle against the session repository. All durable reads and
// writes go through the repository; the engine itself never touches storage.
//
// The engine is single-writer per session: callers are expected to serialize
// operations against one session ID. Operations against different sessions
// may run concurrently.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*ReplaySessionState

	store  store.SessionRepository
	logger zerolog.Logger
}

// NewEngine creates a replay engine backed by the given session repository.
func NewEngine(sessionStore store.SessionRepository, logger zerolog.Logger) *Engine {
	return &Engine{
		sessions: make(map[string]*ReplaySessionState),
		store:    sessionStore,
		logger:   logger,
	}
}

// CreateSession persists a new session with its candle snapshot and
// initializes its in-memory state at index 0. The candle series must be
// non-empty and strictly ordered ascending by timestamp.
func (e *Engine) CreateSession(ctx context.Context, symbol string, sessionDate time.Time, timeframe string, candles []models.Candle) (string, error) {
	if symbol == "" {
		return "", apperrors.NewValidationError("symbol", symbol, "symbol is required")
	}
	if err := models.ValidateSeries(candles); err != nil {
		return "", apperrors.NewValidationError("candles", len(candles), err.Error())
	}

	session := &models.ReplaySession{
		ID:          fmt.Sprintf("%s-%d", symbol, time.Now().UnixNano()),
		Symbol:      symbol,
		SessionDate: sessionDate,
		Timeframe:   timeframe,
		CandleCount: len(candles),
		Status:      models.SessionReady,
		CreatedAt:   time.Now(),
	}

	if err := e.store.Create(ctx, session, candles); err != nil {
		return "", err
	}

	series := make([]models.Candle, len(candles))
	copy(series, candles)

	e.mu.Lock()
	e.sessions[session.ID] = &ReplaySessionState{
		SessionID:    session.ID,
		Candles:      series,
		CurrentIndex: 0,
		IsPlaying:    false,
		status:       models.SessionReady,
	}
	e.mu.Unlock()

	e.logger.Info().
		Str("session_id", session.ID).
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("candles", len(candles)).
		Msg("Replay session created")

	return session.ID, nil
}

// StepReplay advances or retreats the current index by exactly one, clamped
// to the series bounds. Stepping past either boundary is a no-op that returns
// the unchanged state.
func (e *Engine) StepReplay(ctx context.Context, sessionID string, direction StepDirection) (*ReplaySessionState, error) {
	if direction != StepForward && direction != StepBackward {
		return nil, apperrors.NewValidationError("direction", direction, "must be forward or backward")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}

	switch direction {
	case StepForward:
		if !state.AtEnd() {
			state.CurrentIndex++
		}
	case StepBackward:
		if !state.AtStart() {
			state.CurrentIndex--
		}
	}
	state.IsPlaying = true

	e.syncStatus(ctx, state)
	return state.snapshot(), nil
}

// JumpToTime moves the current index to the last candle whose timestamp is at
// or before the target time and returns the visible prefix through that
// index. A target before the first candle is NotFound.
func (e *Engine) JumpToTime(ctx context.Context, sessionID string, target time.Time) ([]models.Candle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}

	// First index strictly after the target; the candle before it is the
	// last one satisfying timestamp <= target.
	idx := sort.Search(len(state.Candles), func(i int) bool {
		return state.Candles[i].Timestamp.After(target)
	}) - 1
	if idx < 0 {
		return nil, apperrors.NewNotFoundError("candle at or before", target.Format(time.RFC3339))
	}

	state.CurrentIndex = idx
	state.IsPlaying = true

	e.syncStatus(ctx, state)
	return state.VisibleCandles(), nil
}

// PauseReplay marks the session as not playing. The current index is left
// untouched; pausing an already paused session is a no-op.
func (e *Engine) PauseReplay(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.sessions[sessionID]
	if !ok {
		return apperrors.NewNotFoundError("session", sessionID)
	}

	state.IsPlaying = false
	e.updateStatus(ctx, state, models.SessionPaused)
	return nil
}

// GetReplayState returns a snapshot of the session's in-memory state.
func (e *Engine) GetReplayState(sessionID string) (*ReplaySessionState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state, ok := e.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}
	return state.snapshot(), nil
}

// GetSessionInfo returns the persisted metadata for a session.
func (e *Engine) GetSessionInfo(ctx context.Context, sessionID string) (*models.ReplaySession, error) {
	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}
	return session, nil
}

// ResumeSession rebuilds in-memory state for a persisted session that is not
// currently active, starting over at index 0. An already active session
// returns its current state unchanged.
func (e *Engine) ResumeSession(ctx context.Context, sessionID string) (*ReplaySessionState, error) {
	e.mu.RLock()
	if state, ok := e.sessions[sessionID]; ok {
		snap := state.snapshot()
		e.mu.RUnlock()
		return snap, nil
	}
	e.mu.RUnlock()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}

	candles, err := e.store.GetCandles(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, apperrors.NewNotFoundError("candles for session", sessionID)
	}

	state := &ReplaySessionState{
		SessionID:    sessionID,
		Candles:      candles,
		CurrentIndex: 0,
		IsPlaying:    false,
		status:       session.Status,
	}

	e.mu.Lock()
	e.sessions[sessionID] = state
	e.mu.Unlock()

	e.logger.Info().
		Str("session_id", sessionID).
		Int("candles", len(candles)).
		Msg("Replay session resumed")

	return state.snapshot(), nil
}

// CloseSession discards the in-memory state for a session. Persisted data is
// unaffected; the session can be resumed later.
func (e *Engine) CloseSession(sessionID string) {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
}

// syncStatus derives the lifecycle status from the traversal position and
// persists it when it changed. Must be called with e.mu held.
func (e *Engine) syncStatus(ctx context.Context, state *ReplaySessionState) {
	next := models.SessionInProgress
	if state.AtEnd() {
		next = models.SessionCompleted
	}
	e.updateStatus(ctx, state, next)
}

// updateStatus persists a status transition through the repository. A failed
// write is logged, not surfaced: the in-memory traversal already happened and
// must stay deterministic regardless of the storage backend.
func (e *Engine) updateStatus(ctx context.Context, state *ReplaySessionState, next models.SessionStatus) {
	if state.status == next {
		return
	}
	state.status = next

	ok, err := e.store.UpdateStatus(ctx, state.SessionID, next)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("session_id", state.SessionID).
			Str("status", string(next)).
			Msg("Failed to persist session status")
		return
	}
	if !ok {
		e.logger.Warn().
			Str("session_id", state.SessionID).
			Msg("Session row missing during status update")
	}
}
