// Package scoring derives behavioral discipline scores from a session's
// trade history.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"replay-trainer/internal/config"
	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
	"replay-trainer/internal/store"
)

// Patience frequency thresholds, in trades per candle of session span. At or
// below low the frequency component is 100; at or above high it is 0.
const (
	patienceFreqLow  = 0.05
	patienceFreqHigh = 0.5
)

// Scorer computes the four behavioral scores for a session and persists them
// through the score repository. Each score is derived independently from the
// trade list; there is no cross-score normalization.
//
// A session with zero trades scores the configured baseline (100 by default)
// on every dimension: no trades means no evidence of indiscipline.
type Scorer struct {
	sessions store.SessionRepository
	trades   store.TradeRepository
	scores   store.ScoreRepository
	cfg      config.ScoringConfig
	logger   zerolog.Logger
}

// NewScorer creates a behavioral scorer over the given repositories.
func NewScorer(sessions store.SessionRepository, trades store.TradeRepository, scores store.ScoreRepository, cfg config.ScoringConfig, logger zerolog.Logger) *Scorer {
	return &Scorer{
		sessions: sessions,
		trades:   trades,
		scores:   scores,
		cfg:      cfg,
		logger:   logger,
	}
}

// CalculateAllScores computes all four behavioral scores for a session,
// persists each through the score repository, and returns them in canonical
// order. Recomputation replaces any previously stored values.
func (s *Scorer) CalculateAllScores(ctx context.Context, sessionID string) ([]models.BehavioralScore, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}

	trades, err := s.trades.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	candles, err := s.sessions.GetCandles(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	span := models.SeriesSpan(candles)

	results := []models.BehavioralScore{
		s.CalculateStopIntegrityScore(sessionID, trades),
		s.CalculatePatienceScore(sessionID, trades, session.CandleCount, span),
		s.CalculateRiskDisciplineScore(sessionID, trades),
		s.CalculateRuleAdherenceScore(sessionID, trades),
	}

	for i := range results {
		if _, err := s.scores.Create(ctx, &results[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("trades", len(trades)).
		Float64("stop_integrity", results[0].ScoreValue).
		Float64("patience", results[1].ScoreValue).
		Float64("risk_discipline", results[2].ScoreValue).
		Float64("rule_adherence", results[3].ScoreValue).
		Msg("Behavioral scores computed")

	return results, nil
}

// CalculateStopIntegrityScore rewards trades that defined a stop loss at
// entry and whose realized loss stayed within the planned risk. Trades
// without a stop earn no credit; trades whose loss exceeded the planned risk
// beyond the configured tolerance earn half credit.
func (s *Scorer) CalculateStopIntegrityScore(sessionID string, trades []models.PaperTrade) models.BehavioralScore {
	if len(trades) == 0 {
		return s.baseline(sessionID, models.ScoreStopIntegrity)
	}

	var credit float64
	var withStop, violations int
	for i := range trades {
		t := &trades[i]
		if !t.HasStop() {
			continue
		}
		withStop++
		if s.violatedStop(t) {
			violations++
			credit += 0.5
			continue
		}
		credit += 1.0
	}

	return models.BehavioralScore{
		SessionID:  sessionID,
		ScoreType:  models.ScoreStopIntegrity,
		ScoreValue: clamp(100*credit/float64(len(trades)), 0, 100),
		Details: models.ScoreDetails{
			TotalTrades:    len(trades),
			TradesWithStop: withStop,
			StopViolations: violations,
		},
	}
}

// CalculatePatienceScore rewards fewer, longer-held trades relative to the
// session's length. It averages a trade-frequency component with a holding
// component; overtrading drags both down.
func (s *Scorer) CalculatePatienceScore(sessionID string, trades []models.PaperTrade, candleCount int, span time.Duration) models.BehavioralScore {
	if len(trades) == 0 {
		return s.baseline(sessionID, models.ScorePatience)
	}

	var tradesPerCandle float64
	if candleCount > 0 {
		tradesPerCandle = float64(len(trades)) / float64(candleCount)
	}

	var freqScore float64
	switch {
	case tradesPerCandle <= patienceFreqLow:
		freqScore = 100
	case tradesPerCandle >= patienceFreqHigh:
		freqScore = 0
	default:
		freqScore = 100 * (patienceFreqHigh - tradesPerCandle) / (patienceFreqHigh - patienceFreqLow)
	}

	var totalHold time.Duration
	var closed int
	for i := range trades {
		if trades[i].ExitTimestamp != nil {
			totalHold += trades[i].HoldDuration()
			closed++
		}
	}

	value := freqScore
	var avgHold time.Duration
	if closed > 0 && span > 0 {
		avgHold = totalHold / time.Duration(closed)
		holdRatio := avgHold.Seconds() / span.Seconds()
		holdScore := clamp(100*holdRatio/s.cfg.PatienceHoldTarget, 0, 100)
		value = (freqScore + holdScore) / 2
	}

	return models.BehavioralScore{
		SessionID:  sessionID,
		ScoreType:  models.ScorePatience,
		ScoreValue: clamp(value, 0, 100),
		Details: models.ScoreDetails{
			TotalTrades:     len(trades),
			AvgHoldSeconds:  avgHold.Seconds(),
			TradesPerCandle: tradesPerCandle,
		},
	}
}

// CalculateRiskDisciplineScore rewards consistent per-trade risk sizing
// (position size times stop distance). The coefficient of variation of planned
// risk drives the score; trades placed without a stop deduct up to 25 points
// in proportion to their share.
func (s *Scorer) CalculateRiskDisciplineScore(sessionID string, trades []models.PaperTrade) models.BehavioralScore {
	if len(trades) == 0 {
		return s.baseline(sessionID, models.ScoreRiskDiscipline)
	}

	risks := []float64{}
	for i := range trades {
		if trades[i].HasStop() {
			risks = append(risks, trades[i].PlannedRisk())
		}
	}

	var cv float64
	base := 100.0
	if len(risks) >= 2 {
		mean := meanOf(risks)
		if mean > 0 {
			cv = stddevOf(risks, mean) / mean
		}
		base = clamp(100*(1-cv), 0, 100)
	}

	noStopShare := float64(len(trades)-len(risks)) / float64(len(trades))
	value := clamp(base-25*noStopShare, 0, 100)

	return models.BehavioralScore{
		SessionID:  sessionID,
		ScoreType:  models.ScoreRiskDiscipline,
		ScoreValue: value,
		Details: models.ScoreDetails{
			TotalTrades:    len(trades),
			TradesWithStop: len(risks),
			RiskCV:         cv,
		},
	}
}

// CalculateRuleAdherenceScore combines entry-type consistency (share of the
// dominant entry type) with realized R-multiple quality against the planned
// reward:risk.
func (s *Scorer) CalculateRuleAdherenceScore(sessionID string, trades []models.PaperTrade) models.BehavioralScore {
	if len(trades) == 0 {
		return s.baseline(sessionID, models.ScoreRuleAdherence)
	}

	counts := map[string]int{}
	for i := range trades {
		entryType := trades[i].EntryType
		if entryType == "" {
			entryType = "UNSPECIFIED"
		}
		counts[entryType]++
	}
	dominant := 0
	for _, n := range counts {
		if n > dominant {
			dominant = n
		}
	}
	dominantShare := float64(dominant) / float64(len(trades))
	consistency := 100 * dominantShare

	var rSum, rrSum float64
	var rCount, rrCount int
	for i := range trades {
		t := &trades[i]
		if t.RMultiple != nil {
			rSum += *t.RMultiple
			rCount++
		}
		if rr := t.PlannedRewardRisk(); rr > 0 {
			rrSum += rr
			rrCount++
		}
	}

	// No closed trade with a measurable R yields no evidence either way.
	rQuality := 100.0
	var avgR float64
	if rCount > 0 {
		avgR = rSum / float64(rCount)
		plannedRR := 1.0
		if rrCount > 0 {
			plannedRR = rrSum / float64(rrCount)
		}
		// A full stop-out (-1R) scores 0; realizing the planned R scores 100.
		rQuality = clamp(100*(avgR+1)/(plannedRR+1), 0, 100)
	}

	return models.BehavioralScore{
		SessionID:  sessionID,
		ScoreType:  models.ScoreRuleAdherence,
		ScoreValue: clamp((consistency+rQuality)/2, 0, 100),
		Details: models.ScoreDetails{
			TotalTrades:        len(trades),
			DominantEntryShare: dominantShare,
			AvgRMultiple:       avgR,
		},
	}
}

// violatedStop reports whether a closed losing trade lost more than its
// planned risk, beyond the configured tolerance.
func (s *Scorer) violatedStop(t *models.PaperTrade) bool {
	if t.PnL == nil || *t.PnL >= 0 {
		return false
	}
	risk := t.PlannedRisk()
	if risk <= 0 {
		return false
	}
	return -*t.PnL > risk*(1+s.cfg.StopTolerance)
}

func (s *Scorer) baseline(sessionID string, scoreType models.ScoreType) models.BehavioralScore {
	return models.BehavioralScore{
		SessionID:  sessionID,
		ScoreType:  scoreType,
		ScoreValue: s.cfg.BaselineScore,
		Details:    models.ScoreDetails{TotalTrades: 0},
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
