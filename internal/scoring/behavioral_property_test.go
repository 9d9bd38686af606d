package scoring

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"replay-trainer/internal/models"
)

type tradeSample struct {
	Entry    float64
	Exit     float64
	StopDist float64
	HasStop  bool
	Long     bool
	Quantity int
	HoldMins int
	Closed   bool
}

func buildTrades(samples []tradeSample, start time.Time) []models.PaperTrade {
	trades := make([]models.PaperTrade, 0, len(samples))
	for i, sample := range samples {
		trade := models.PaperTrade{
			SessionID:      "s",
			EntryTimestamp: start.Add(time.Duration(i) * time.Minute),
			EntryPrice:     sample.Entry,
			Quantity:       sample.Quantity,
			Side:           models.SideLong,
			EntryType:      "BREAKOUT",
			Status:         models.TradeOpen,
		}
		if !sample.Long {
			trade.Side = models.SideShort
		}
		if sample.HasStop {
			stop := sample.Entry - sample.StopDist
			if trade.Side == models.SideShort {
				stop = sample.Entry + sample.StopDist
			}
			trade.StopLoss = &stop
		}
		if sample.Closed {
			trade.Close(trade.EntryTimestamp.Add(time.Duration(sample.HoldMins)*time.Minute), sample.Exit)
		}
		trades = append(trades, trade)
	}
	return trades
}

// Every dimension must stay in [0, 100] for arbitrary trade histories.
func TestProperty_ScoresBounded(t *testing.T) {
	scorer := pureScorer()
	start := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	span := 59 * time.Minute
	candleCount := 60

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	tradeGen := gen.Struct(reflect.TypeOf(tradeSample{}), map[string]gopter.Gen{
		"Entry":    gen.Float64Range(10.0, 5000.0),
		"Exit":     gen.Float64Range(10.0, 5000.0),
		"StopDist": gen.Float64Range(0.0, 50.0),
		"HasStop":  gen.Bool(),
		"Long":     gen.Bool(),
		"Quantity": gen.IntRange(1, 500),
		"HoldMins": gen.IntRange(0, 120),
		"Closed":   gen.Bool(),
	})

	properties.Property("all scores lie within [0, 100]", prop.ForAll(
		func(samples []tradeSample) bool {
			trades := buildTrades(samples, start)
			values := []float64{
				scorer.CalculateStopIntegrityScore("s", trades).ScoreValue,
				scorer.CalculatePatienceScore("s", trades, candleCount, span).ScoreValue,
				scorer.CalculateRiskDisciplineScore("s", trades).ScoreValue,
				scorer.CalculateRuleAdherenceScore("s", trades).ScoreValue,
			}
			for _, v := range values {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(tradeGen),
	))

	properties.TestingRun(t)
}
