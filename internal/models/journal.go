package models

import "time"

// EntryType represents the kind of a journal entry.
type EntryType string

const (
	EntryNote    EntryType = "NOTE"
	EntrySetup   EntryType = "SETUP"
	EntryMistake EntryType = "MISTAKE"
	EntryLesson  EntryType = "LESSON"
)

// JournalEntry represents a note recorded during a replay session.
// Entries are append-only; TemplateData carries optional structured
// key/value payload for templated entries and round-trips losslessly
// through persistence.
type JournalEntry struct {
	ID           int64
	SessionID    string
	Timestamp    time.Time
	CandleIndex  int
	EntryType    EntryType
	Content      string
	EmotionTag   string
	TemplateData map[string]string
}
