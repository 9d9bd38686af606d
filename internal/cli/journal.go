package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"replay-trainer/internal/models"
)

func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Session journal management",
	}

	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalListCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalAddCmd(app *App) *cobra.Command {
	var content, entryType, emotion string
	var data []string

	cmd := &cobra.Command{
		Use:   "add <session-id>",
		Short: "Add a journal entry at the current replay candle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			state, err := app.Engine.GetReplayState(args[0])
			if err != nil {
				return err
			}

			entry := &models.JournalEntry{
				SessionID:   args[0],
				Timestamp:   state.Current().Timestamp,
				CandleIndex: state.CurrentIndex,
				EntryType:   models.EntryType(strings.ToUpper(entryType)),
				Content:     content,
				EmotionTag:  emotion,
			}

			if len(data) > 0 {
				entry.TemplateData = map[string]string{}
				for _, kv := range data {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid --data %q, expected key=value", kv)
					}
					entry.TemplateData[parts[0]] = parts[1]
				}
			}

			id, err := app.Repos.Journal.Create(ctx, entry)
			if err != nil {
				return err
			}

			fmt.Printf("Journal entry %d recorded at candle %d\n", id, entry.CandleIndex)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "entry text (required)")
	cmd.Flags().StringVar(&entryType, "type", "NOTE", "entry type: NOTE, SETUP, MISTAKE, LESSON")
	cmd.Flags().StringVar(&emotion, "emotion", "", "emotion tag")
	cmd.Flags().StringArrayVar(&data, "data", nil, "template data as key=value (repeatable)")
	cmd.MarkFlagRequired("content")
	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <session-id>",
		Short: "List journal entries for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			entries, err := app.Repos.Journal.ListBySession(ctx, args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No journal entries.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("[%s] #%d %s (candle %d)", e.Timestamp.Format("15:04:05"), e.ID, e.EntryType, e.CandleIndex)
				if e.EmotionTag != "" {
					fmt.Printf(" <%s>", e.EmotionTag)
				}
				fmt.Printf("\n  %s\n", e.Content)
			}
			return nil
		},
	}
}
