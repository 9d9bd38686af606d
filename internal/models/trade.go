package models

import (
	"math"
	"time"
)

// TradeSide represents the direction of a paper trade.
type TradeSide string

const (
	SideLong  TradeSide = "LONG"
	SideShort TradeSide = "SHORT"
)

// TradeStatus represents the status of a paper trade.
type TradeStatus string

const (
	TradeOpen      TradeStatus = "OPEN"
	TradeClosed    TradeStatus = "CLOSED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// PaperTrade represents a simulated trade recorded against a replay session.
// Exit fields, PnL, RMultiple and Status are filled on close; everything else
// is fixed at entry.
type PaperTrade struct {
	ID             int64
	SessionID      string
	EntryTimestamp time.Time
	ExitTimestamp  *time.Time
	EntryPrice     float64
	ExitPrice      *float64
	Quantity       int
	Side           TradeSide
	EntryType      string
	StopLoss       *float64
	TakeProfit     *float64
	PnL            *float64
	RMultiple      *float64
	Status         TradeStatus
}

// HasStop reports whether a stop loss was defined at entry.
func (t *PaperTrade) HasStop() bool {
	return t.StopLoss != nil && *t.StopLoss > 0
}

// StopDistance returns the per-unit distance between entry and stop,
// or 0 when no stop was defined.
func (t *PaperTrade) StopDistance() float64 {
	if !t.HasStop() {
		return 0
	}
	return math.Abs(t.EntryPrice - *t.StopLoss)
}

// PlannedRisk returns the total amount risked at entry (position size times
// stop distance), or 0 when no stop was defined.
func (t *PaperTrade) PlannedRisk() float64 {
	return float64(t.Quantity) * t.StopDistance()
}

// PlannedRewardRisk returns the planned reward:risk ratio when both a stop
// loss and a take profit were defined, and 0 otherwise.
func (t *PaperTrade) PlannedRewardRisk() float64 {
	if !t.HasStop() || t.TakeProfit == nil || *t.TakeProfit <= 0 {
		return 0
	}
	dist := t.StopDistance()
	if dist == 0 {
		return 0
	}
	return math.Abs(*t.TakeProfit-t.EntryPrice) / dist
}

// GrossPnL returns the profit or loss of exiting the full position at the
// given price, signed for the trade side.
func (t *PaperTrade) GrossPnL(exitPrice float64) float64 {
	diff := exitPrice - t.EntryPrice
	if t.Side == SideShort {
		diff = -diff
	}
	return diff * float64(t.Quantity)
}

// HoldDuration returns how long the trade was held. Open trades return 0.
func (t *PaperTrade) HoldDuration() time.Duration {
	if t.ExitTimestamp == nil {
		return 0
	}
	return t.ExitTimestamp.Sub(t.EntryTimestamp)
}

// Close fills the exit fields of the trade, deriving PnL and, when a stop was
// defined, the realized R-multiple.
func (t *PaperTrade) Close(exitTime time.Time, exitPrice float64) {
	t.ExitTimestamp = &exitTime
	t.ExitPrice = &exitPrice
	pnl := t.GrossPnL(exitPrice)
	t.PnL = &pnl
	if risk := t.PlannedRisk(); risk > 0 {
		r := pnl / risk
		t.RMultiple = &r
	}
	t.Status = TradeClosed
}
