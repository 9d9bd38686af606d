package models

import "time"

// SessionStatus represents the lifecycle status of a replay session.
type SessionStatus string

const (
	SessionReady      SessionStatus = "READY"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionPaused     SessionStatus = "PAUSED"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// ReplaySession represents persisted metadata for one replay session.
// Status is the only field that changes after creation.
type ReplaySession struct {
	ID          string
	Symbol      string
	SessionDate time.Time
	Timeframe   string
	CandleCount int
	Status      SessionStatus
	CreatedAt   time.Time
}
