// Package models provides domain models for the replay trainer.
package models

import (
	"errors"
	"time"
)

// Series validation errors.
var (
	ErrEmptySeries     = errors.New("empty candle series")
	ErrUnorderedSeries = errors.New("candles not strictly ordered by timestamp")
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// ValidateSeries checks that a candle series is non-empty, strictly ordered
// ascending by timestamp, and free of duplicate timestamps.
func ValidateSeries(candles []Candle) error {
	if len(candles) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return ErrUnorderedSeries
		}
	}
	return nil
}

// SeriesSpan returns the duration covered by a candle series, from the first
// candle's timestamp to the last one's. Zero for series shorter than two bars.
func SeriesSpan(candles []Candle) time.Duration {
	if len(candles) < 2 {
		return 0
	}
	return candles[len(candles)-1].Timestamp.Sub(candles[0].Timestamp)
}
