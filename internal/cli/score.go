package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func addScoreCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "score <session-id>",
		Short: "Compute behavioral scores for a session",
		Long:  "Derive the four behavioral discipline scores from the session's trades and persist them. Recomputation replaces earlier scores.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			scores, err := app.Scorer.CalculateAllScores(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%-18s %-8s %s\n", "DIMENSION", "SCORE", "TRADES")
			for _, s := range scores {
				fmt.Printf("%-18s %-8.1f %d\n", s.ScoreType, s.ScoreValue, s.Details.TotalTrades)
			}
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
}
