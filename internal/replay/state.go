// Package replay provides deterministic bar-by-bar traversal of candle series.
package replay

import (
	"replay-trainer/internal/models"
)

// ReplaySessionState is the in-memory traversal state of one active session.
// Exactly one state exists per session ID, owned by the engine; callers
// receive snapshot copies. Invariant: 0 <= CurrentIndex < len(Candles).
type ReplaySessionState struct {
	SessionID    string
	Candles      []models.Candle
	CurrentIndex int
	IsPlaying    bool

	status models.SessionStatus
}

// VisibleCandles returns the prefix of the series through CurrentIndex,
// inclusive. The returned slice shares backing storage with the full series
// and must not be modified.
func (s *ReplaySessionState) VisibleCandles() []models.Candle {
	return s.Candles[:s.CurrentIndex+1]
}

// Current returns the candle at the current index.
func (s *ReplaySessionState) Current() models.Candle {
	return s.Candles[s.CurrentIndex]
}

// AtStart reports whether the state sits on the first candle.
func (s *ReplaySessionState) AtStart() bool {
	return s.CurrentIndex == 0
}

// AtEnd reports whether the state sits on the last candle.
func (s *ReplaySessionState) AtEnd() bool {
	return s.CurrentIndex == len(s.Candles)-1
}

// snapshot returns a copy safe to hand to callers. The candle slice is shared
// because candles are immutable.
func (s *ReplaySessionState) snapshot() *ReplaySessionState {
	copied := *s
	return &copied
}
