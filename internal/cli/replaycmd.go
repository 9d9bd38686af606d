package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"replay-trainer/internal/replay"
)

func addReplayCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStepCmd(app))
	rootCmd.AddCommand(newJumpCmd(app))
	rootCmd.AddCommand(newPauseCmd(app))
	rootCmd.AddCommand(newStateCmd(app))
}

func newStepCmd(app *App) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "step <session-id>",
		Short: "Advance the replay by one candle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			direction := replay.StepForward
			if back {
				direction = replay.StepBackward
			}

			state, err := app.Engine.StepReplay(ctx, args[0], direction)
			if err != nil {
				return err
			}

			printState(state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&back, "back", false, "step backward instead of forward")
	return cmd
}

func newJumpCmd(app *App) *cobra.Command {
	var timeStr string

	cmd := &cobra.Command{
		Use:   "jump <session-id>",
		Short: "Jump to the last candle at or before a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			target, err := time.Parse(time.RFC3339, timeStr)
			if err != nil {
				return fmt.Errorf("invalid --time, expected RFC3339: %w", err)
			}

			visible, err := app.Engine.JumpToTime(ctx, args[0], target)
			if err != nil {
				return err
			}

			last := visible[len(visible)-1]
			fmt.Printf("Jumped to %s (%d candles visible)\n", last.Timestamp.Format(time.RFC3339), len(visible))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeStr, "time", "", "target time (RFC3339, required)")
	cmd.MarkFlagRequired("time")
	return cmd
}

func newPauseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <session-id>",
		Short: "Pause the replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.Engine.PauseReplay(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Replay paused.")
			return nil
		},
	}
}

func newStateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "state <session-id>",
		Short: "Show the current replay state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := app.Engine.GetReplayState(args[0])
			if err != nil {
				return err
			}
			printState(state)
			return nil
		},
	}
}

func printState(state *replay.ReplaySessionState) {
	current := state.Current()
	fmt.Printf("Index:   %d / %d\n", state.CurrentIndex, len(state.Candles)-1)
	fmt.Printf("Time:    %s\n", current.Timestamp.Format(time.RFC3339))
	fmt.Printf("OHLC:    %.2f / %.2f / %.2f / %.2f\n", current.Open, current.High, current.Low, current.Close)
	fmt.Printf("Volume:  %d\n", current.Volume)
	fmt.Printf("Playing: %v\n", state.IsPlaying)
}
