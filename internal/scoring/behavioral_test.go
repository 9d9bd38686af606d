package scoring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"replay-trainer/internal/config"
	apperrors "replay-trainer/internal/errors"
	"replay-trainer/internal/models"
	"replay-trainer/internal/store"
)

func newTestScorer(t *testing.T) (*Scorer, *store.Repositories) {
	t.Helper()
	repos, err := store.NewSQLiteRepositories(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	scorer := NewScorer(repos.Sessions, repos.Trades, repos.Scores, config.DefaultScoringConfig(), zerolog.Nop())
	return scorer, repos
}

// pureScorer builds a scorer with no repositories, for the per-dimension
// calculations that only read their arguments.
func pureScorer() *Scorer {
	return NewScorer(nil, nil, nil, config.DefaultScoringConfig(), zerolog.Nop())
}

func seedSession(t *testing.T, repos *store.Repositories, id string, candleCount int, start time.Time) {
	t.Helper()
	candles := make([]models.Candle, candleCount)
	for i := 0; i < candleCount; i++ {
		price := 100.0 + float64(i)
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    500,
		}
	}
	session := &models.ReplaySession{
		ID:          id,
		Symbol:      "TEST",
		SessionDate: start,
		Timeframe:   "1min",
		CandleCount: candleCount,
		Status:      models.SessionReady,
		CreatedAt:   start,
	}
	if err := repos.Sessions.Create(context.Background(), session, candles); err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
}

func ptr(v float64) *float64 { return &v }

// closedTrade builds a closed trade entering at entry with a stop, held for
// the given duration and exited at exitPrice.
func closedTrade(sessionID string, entryAt time.Time, hold time.Duration, entry, exit float64, stop *float64, qty int) models.PaperTrade {
	trade := models.PaperTrade{
		SessionID:      sessionID,
		EntryTimestamp: entryAt,
		EntryPrice:     entry,
		Quantity:       qty,
		Side:           models.SideLong,
		EntryType:      "BREAKOUT",
		StopLoss:       stop,
		Status:         models.TradeOpen,
	}
	trade.Close(entryAt.Add(hold), exit)
	return trade
}

func TestZeroTradeBaseline(t *testing.T) {
	scorer, repos := newTestScorer(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	seedSession(t, repos, "empty-1", 12, start)

	scores, err := scorer.CalculateAllScores(ctx, "empty-1")
	if err != nil {
		t.Fatalf("CalculateAllScores failed: %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("Expected 4 scores, got %d", len(scores))
	}
	for _, sc := range scores {
		if sc.ScoreValue != 100 {
			t.Errorf("Expected baseline 100 for %s, got %.2f", sc.ScoreType, sc.ScoreValue)
		}
		if sc.Details.TotalTrades != 0 {
			t.Errorf("Expected 0 trades in details for %s, got %d", sc.ScoreType, sc.Details.TotalTrades)
		}
	}
}

func TestCalculateAllScoresUnknownSession(t *testing.T) {
	scorer, _ := newTestScorer(t)

	_, err := scorer.CalculateAllScores(context.Background(), "missing")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecomputationReplacesScores(t *testing.T) {
	scorer, repos := newTestScorer(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	seedSession(t, repos, "recompute-1", 12, start)

	if _, err := scorer.CalculateAllScores(ctx, "recompute-1"); err != nil {
		t.Fatalf("First computation failed: %v", err)
	}

	trade := closedTrade("recompute-1", start, 5*time.Minute, 100.0, 103.0, ptr(99.0), 10)
	if _, err := repos.Trades.Create(ctx, &trade); err != nil {
		t.Fatalf("Failed to create trade: %v", err)
	}

	if _, err := scorer.CalculateAllScores(ctx, "recompute-1"); err != nil {
		t.Fatalf("Second computation failed: %v", err)
	}

	stored, err := repos.Scores.GetBySession(ctx, "recompute-1")
	if err != nil {
		t.Fatalf("GetBySession failed: %v", err)
	}
	if len(stored) != 4 {
		t.Errorf("Expected exactly 4 stored scores after recomputation, got %d", len(stored))
	}
	for _, sc := range stored {
		if sc.Details.TotalTrades != 1 {
			t.Errorf("Expected details refreshed to 1 trade for %s, got %d", sc.ScoreType, sc.Details.TotalTrades)
		}
	}
}

func TestStopIntegrityScore(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name   string
		trades []models.PaperTrade
		want   float64
	}{
		{
			name: "all trades with respected stops",
			trades: []models.PaperTrade{
				closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 10),
				closedTrade("s", start, time.Minute, 100.0, 99.0, ptr(99.0), 10),
			},
			want: 100,
		},
		{
			name: "no stops defined",
			trades: []models.PaperTrade{
				closedTrade("s", start, time.Minute, 100.0, 103.0, nil, 10),
				closedTrade("s", start, time.Minute, 100.0, 98.0, nil, 10),
			},
			want: 0,
		},
		{
			name: "loss beyond planned risk earns half credit",
			trades: []models.PaperTrade{
				// Stop at 99 plans 10 of risk; exiting at 97 loses 30.
				closedTrade("s", start, time.Minute, 100.0, 97.0, ptr(99.0), 10),
			},
			want: 50,
		},
		{
			name: "mixed",
			trades: []models.PaperTrade{
				closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 10),
				closedTrade("s", start, time.Minute, 100.0, 103.0, nil, 10),
			},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.CalculateStopIntegrityScore("s", tt.trades)
			if got.ScoreValue != tt.want {
				t.Errorf("Expected %.1f, got %.1f", tt.want, got.ScoreValue)
			}
		})
	}
}

func TestStopIntegrityTracksViolations(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	trades := []models.PaperTrade{
		closedTrade("s", start, time.Minute, 100.0, 97.0, ptr(99.0), 10),
		closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 10),
	}
	got := scorer.CalculateStopIntegrityScore("s", trades)
	if got.Details.TradesWithStop != 2 {
		t.Errorf("Expected 2 trades with stop, got %d", got.Details.TradesWithStop)
	}
	if got.Details.StopViolations != 1 {
		t.Errorf("Expected 1 violation, got %d", got.Details.StopViolations)
	}
}

func TestPatienceScoreFrequency(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	span := 59 * time.Minute

	// 3 trades over 60 candles is 0.05 trades per candle; long holds push the
	// holding component to its cap.
	calm := []models.PaperTrade{
		closedTrade("s", start, 15*time.Minute, 100.0, 103.0, ptr(99.0), 10),
		closedTrade("s", start.Add(20*time.Minute), 15*time.Minute, 100.0, 103.0, ptr(99.0), 10),
		closedTrade("s", start.Add(40*time.Minute), 15*time.Minute, 100.0, 103.0, ptr(99.0), 10),
	}
	got := scorer.CalculatePatienceScore("s", calm, 60, span)
	if got.ScoreValue != 100 {
		t.Errorf("Expected 100 for calm trading, got %.2f", got.ScoreValue)
	}

	// 30 trades over 60 candles hits the 0.5 frequency ceiling.
	frantic := make([]models.PaperTrade, 30)
	for i := range frantic {
		frantic[i] = closedTrade("s", start.Add(time.Duration(i)*time.Minute), 30*time.Second, 100.0, 100.5, ptr(99.5), 10)
	}
	got = scorer.CalculatePatienceScore("s", frantic, 60, span)
	if got.ScoreValue >= 10 {
		t.Errorf("Expected near-zero for frantic trading, got %.2f", got.ScoreValue)
	}
}

func TestPatienceScoreOpenTradesOnly(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	// A single open trade has no hold evidence; only frequency counts.
	trades := []models.PaperTrade{{
		SessionID:      "s",
		EntryTimestamp: start,
		EntryPrice:     100.0,
		Quantity:       10,
		Side:           models.SideLong,
		Status:         models.TradeOpen,
	}}
	got := scorer.CalculatePatienceScore("s", trades, 60, 59*time.Minute)
	if got.ScoreValue != 100 {
		t.Errorf("Expected frequency-only score 100, got %.2f", got.ScoreValue)
	}
	if got.Details.AvgHoldSeconds != 0 {
		t.Errorf("Expected no hold evidence, got %.1f", got.Details.AvgHoldSeconds)
	}
}

func TestRiskDisciplineScore(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	// Identical planned risk on every trade: zero variation.
	uniform := []models.PaperTrade{
		closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 10),
		closedTrade("s", start, time.Minute, 200.0, 203.0, ptr(199.0), 10),
	}
	got := scorer.CalculateRiskDisciplineScore("s", uniform)
	if got.ScoreValue != 100 {
		t.Errorf("Expected 100 for uniform risk, got %.2f", got.ScoreValue)
	}
	if got.Details.RiskCV != 0 {
		t.Errorf("Expected zero CV, got %.4f", got.Details.RiskCV)
	}

	// Wildly uneven sizing scores lower.
	uneven := []models.PaperTrade{
		closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 1),
		closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 100),
	}
	unevenScore := scorer.CalculateRiskDisciplineScore("s", uneven)
	if unevenScore.ScoreValue >= got.ScoreValue {
		t.Errorf("Expected uneven sizing to score below uniform, got %.2f", unevenScore.ScoreValue)
	}

	// All trades without stops forfeit the flat deduction.
	noStops := []models.PaperTrade{
		closedTrade("s", start, time.Minute, 100.0, 103.0, nil, 10),
		closedTrade("s", start, time.Minute, 100.0, 103.0, nil, 10),
	}
	noStopScore := scorer.CalculateRiskDisciplineScore("s", noStops)
	if noStopScore.ScoreValue != 75 {
		t.Errorf("Expected 75 with full no-stop deduction, got %.2f", noStopScore.ScoreValue)
	}
}

func TestRuleAdherenceScore(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

	// Same entry type throughout and every trade realizing its planned R.
	trade := closedTrade("s", start, time.Minute, 100.0, 102.0, ptr(99.0), 10)
	trade.TakeProfit = ptr(102.0)
	consistent := []models.PaperTrade{trade, trade}
	got := scorer.CalculateRuleAdherenceScore("s", consistent)
	if got.ScoreValue != 100 {
		t.Errorf("Expected 100 for consistent rule-following, got %.2f", got.ScoreValue)
	}
	if got.Details.DominantEntryShare != 1.0 {
		t.Errorf("Expected dominant share 1.0, got %.2f", got.Details.DominantEntryShare)
	}

	// Scattered entry types drag the consistency component down.
	a := closedTrade("s", start, time.Minute, 100.0, 103.0, ptr(99.0), 10)
	b := a
	b.EntryType = "REVERSAL"
	c := a
	c.EntryType = "SCALP"
	scattered := scorer.CalculateRuleAdherenceScore("s", []models.PaperTrade{a, b, c})
	if scattered.ScoreValue >= got.ScoreValue {
		t.Errorf("Expected scattered entries to score below consistent, got %.2f", scattered.ScoreValue)
	}
}

// Disciplined behavior must strictly outrank undisciplined behavior on both
// stop integrity and patience.
func TestDisciplineOrdering(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	span := 59 * time.Minute
	candleCount := 60

	disciplined := []models.PaperTrade{
		closedTrade("s", start, 15*time.Minute, 100.0, 103.0, ptr(99.0), 10),
		closedTrade("s", start.Add(20*time.Minute), 15*time.Minute, 100.0, 99.0, ptr(99.0), 10),
		closedTrade("s", start.Add(40*time.Minute), 15*time.Minute, 100.0, 104.0, ptr(99.0), 10),
	}

	undisciplined := make([]models.PaperTrade, 25)
	for i := range undisciplined {
		undisciplined[i] = closedTrade("s", start.Add(time.Duration(i)*2*time.Minute), time.Minute, 100.0, 99.0, nil, 10)
	}

	dStop := scorer.CalculateStopIntegrityScore("s", disciplined).ScoreValue
	uStop := scorer.CalculateStopIntegrityScore("s", undisciplined).ScoreValue
	if dStop <= uStop {
		t.Errorf("Expected disciplined stop integrity %.2f > undisciplined %.2f", dStop, uStop)
	}

	dPatience := scorer.CalculatePatienceScore("s", disciplined, candleCount, span).ScoreValue
	uPatience := scorer.CalculatePatienceScore("s", undisciplined, candleCount, span).ScoreValue
	if dPatience <= uPatience {
		t.Errorf("Expected disciplined patience %.2f > undisciplined %.2f", dPatience, uPatience)
	}
}
