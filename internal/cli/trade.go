package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"replay-trainer/internal/models"
)

func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Paper trade recording",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeListCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var price, stop, target float64
	var qty int
	var side, entryType string

	cmd := &cobra.Command{
		Use:   "add <session-id>",
		Short: "Record a trade at the current replay candle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			state, err := app.Engine.GetReplayState(args[0])
			if err != nil {
				return err
			}

			tradeSide := models.TradeSide(strings.ToUpper(side))
			if tradeSide != models.SideLong && tradeSide != models.SideShort {
				return fmt.Errorf("invalid --side %q, must be LONG or SHORT", side)
			}

			entryPrice := price
			if entryPrice == 0 {
				entryPrice = state.Current().Close
			}

			trade := &models.PaperTrade{
				SessionID:      args[0],
				EntryTimestamp: state.Current().Timestamp,
				EntryPrice:     entryPrice,
				Quantity:       qty,
				Side:           tradeSide,
				EntryType:      entryType,
				Status:         models.TradeOpen,
			}
			if stop > 0 {
				trade.StopLoss = &stop
			}
			if target > 0 {
				trade.TakeProfit = &target
			}

			id, err := app.Repos.Trades.Create(ctx, trade)
			if err != nil {
				return err
			}

			fmt.Printf("Trade %d recorded: %s %d @ %.2f\n", id, tradeSide, qty, entryPrice)
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "entry price (default: current candle close)")
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity")
	cmd.Flags().StringVar(&side, "side", "LONG", "trade side: LONG or SHORT")
	cmd.Flags().StringVar(&entryType, "type", "", "entry type label (e.g. breakout, pullback)")
	cmd.Flags().Float64Var(&stop, "stop", 0, "stop loss price")
	cmd.Flags().Float64Var(&target, "target", 0, "take profit price")
	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var price float64

	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open trade at the current replay candle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid trade id %q", args[0])
			}

			trade, err := app.Repos.Trades.Get(ctx, id)
			if err != nil {
				return err
			}
			if trade == nil {
				return fmt.Errorf("trade %d not found", id)
			}
			if trade.Status != models.TradeOpen {
				return fmt.Errorf("trade %d is not open", id)
			}

			state, err := app.Engine.GetReplayState(trade.SessionID)
			if err != nil {
				return err
			}

			exitPrice := price
			if exitPrice == 0 {
				exitPrice = state.Current().Close
			}

			trade.Close(state.Current().Timestamp, exitPrice)
			ok, err := app.Repos.Trades.Update(ctx, trade)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("trade %d could not be updated", id)
			}

			fmt.Printf("Trade %d closed @ %.2f (PnL %.2f)\n", id, exitPrice, *trade.PnL)
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "exit price (default: current candle close)")
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <session-id>",
		Short: "List trades for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			trades, err := app.Repos.Trades.ListBySession(ctx, args[0])
			if err != nil {
				return err
			}
			if len(trades) == 0 {
				fmt.Println("No trades recorded.")
				return nil
			}

			fmt.Printf("%-5s %-6s %-5s %-10s %-10s %-10s %-8s %s\n",
				"ID", "SIDE", "QTY", "ENTRY", "EXIT", "PNL", "R", "STATUS")
			for _, t := range trades {
				exit, pnl, r := "-", "-", "-"
				if t.ExitPrice != nil {
					exit = fmt.Sprintf("%.2f", *t.ExitPrice)
				}
				if t.PnL != nil {
					pnl = fmt.Sprintf("%.2f", *t.PnL)
				}
				if t.RMultiple != nil {
					r = fmt.Sprintf("%.2f", *t.RMultiple)
				}
				fmt.Printf("%-5d %-6s %-5d %-10.2f %-10s %-10s %-8s %s\n",
					t.ID, t.Side, t.Quantity, t.EntryPrice, exit, pnl, r, t.Status)
			}
			return nil
		},
	}
}
