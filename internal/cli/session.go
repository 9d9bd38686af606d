package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"replay-trainer/internal/models"
)

// candleRow is the CSV on-disk shape of one candle.
type candleRow struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    int64   `csv:"volume"`
}

func addSessionCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Replay session management",
	}

	cmd.AddCommand(newSessionCreateCmd(app))
	cmd.AddCommand(newSessionListCmd(app))
	cmd.AddCommand(newSessionInfoCmd(app))
	cmd.AddCommand(newSessionResumeCmd(app))

	rootCmd.AddCommand(cmd)
}

func newSessionCreateCmd(app *App) *cobra.Command {
	var symbol, timeframe, dateStr, csvPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a replay session from a candle CSV",
		Long:  "Load an ordered OHLCV series from a CSV file (timestamp,open,high,low,close,volume) and create a replay session over it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			candles, err := loadCandlesCSV(csvPath)
			if err != nil {
				return err
			}

			sessionDate := time.Now()
			if dateStr != "" {
				sessionDate, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
				}
			}

			id, err := app.Engine.CreateSession(ctx, symbol, sessionDate, timeframe, candles)
			if err != nil {
				return err
			}

			fmt.Printf("Session created: %s (%d candles)\n", id, len(candles))
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "instrument symbol (required)")
	cmd.Flags().StringVar(&timeframe, "timeframe", "1min", "candle timeframe")
	cmd.Flags().StringVar(&dateStr, "date", "", "session date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to candle CSV file (required)")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("csv")

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List replay sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			sessions, err := app.Repos.Sessions.ListAll(ctx, symbol)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			fmt.Printf("%-40s %-10s %-12s %-8s %-8s %s\n", "ID", "SYMBOL", "DATE", "TF", "CANDLES", "STATUS")
			for _, s := range sessions {
				fmt.Printf("%-40s %-10s %-12s %-8s %-8d %s\n",
					s.ID, s.Symbol, s.SessionDate.Format("2006-01-02"), s.Timeframe, s.CandleCount, s.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	return cmd
}

func newSessionInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info <session-id>",
		Short: "Show session metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			session, err := app.Engine.GetSessionInfo(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ID:        %s\n", session.ID)
			fmt.Printf("Symbol:    %s\n", session.Symbol)
			fmt.Printf("Date:      %s\n", session.SessionDate.Format("2006-01-02"))
			fmt.Printf("Timeframe: %s\n", session.Timeframe)
			fmt.Printf("Candles:   %d\n", session.CandleCount)
			fmt.Printf("Status:    %s\n", session.Status)
			return nil
		},
	}
}

func newSessionResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Rebuild in-memory replay state for a persisted session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			state, err := app.Engine.ResumeSession(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Session resumed at index %d of %d candles\n", state.CurrentIndex, len(state.Candles))
			return nil
		},
	}
}

func loadCandlesCSV(path string) ([]models.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	rows := []*candleRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339, row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i+1, row.Timestamp, err)
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}
	return candles, nil
}
