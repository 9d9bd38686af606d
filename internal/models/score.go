package models

import "time"

// ScoreType identifies one behavioral scoring dimension.
type ScoreType string

const (
	ScoreStopIntegrity  ScoreType = "stop_integrity"
	ScorePatience       ScoreType = "patience"
	ScoreRiskDiscipline ScoreType = "risk_discipline"
	ScoreRuleAdherence  ScoreType = "rule_adherence"
)

// AllScoreTypes returns the four scoring dimensions in their canonical order.
func AllScoreTypes() []ScoreType {
	return []ScoreType{
		ScoreStopIntegrity,
		ScorePatience,
		ScoreRiskDiscipline,
		ScoreRuleAdherence,
	}
}

// ScoreDetails carries the evidence behind a behavioral score. TotalTrades is
// always set; the remaining fields are populated by the scorer that owns them.
type ScoreDetails struct {
	TotalTrades        int     `json:"total_trades"`
	TradesWithStop     int     `json:"trades_with_stop,omitempty"`
	StopViolations     int     `json:"stop_violations,omitempty"`
	AvgHoldSeconds     float64 `json:"avg_hold_seconds,omitempty"`
	TradesPerCandle    float64 `json:"trades_per_candle,omitempty"`
	RiskCV             float64 `json:"risk_cv,omitempty"`
	DominantEntryShare float64 `json:"dominant_entry_share,omitempty"`
	AvgRMultiple       float64 `json:"avg_r_multiple,omitempty"`
}

// BehavioralScore represents one scored dimension of trading discipline for a
// session. At most one score exists per (SessionID, ScoreType); recomputation
// replaces the previous value.
type BehavioralScore struct {
	ID         int64
	SessionID  string
	ScoreType  ScoreType
	ScoreValue float64
	Details    ScoreDetails
	CreatedAt  time.Time
}
