// Package cli provides the command-line interface for the replay trainer.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"replay-trainer/internal/config"
	"replay-trainer/internal/logging"
	"replay-trainer/internal/replay"
	"replay-trainer/internal/scoring"
	"replay-trainer/internal/store"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Repos  *store.Repositories
	Engine *replay.Engine
	Scorer *scoring.Scorer
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) (*cobra.Command, error) {
	repos, err := store.NewSQLiteRepositories(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Repos:  repos,
		Engine: replay.NewEngine(repos.Sessions, logger),
		Scorer: scoring.NewScorer(repos.Sessions, repos.Trades, repos.Scores, cfg.Scoring, logger),
	}

	rootCmd := &cobra.Command{
		Use:   "replay",
		Short: "Bar replay trainer for trading-skill practice",
		Long: `Replay a historical price series bar by bar, record paper trades and
journal notes during the replay, and score the resulting trading behavior.

Use 'replay help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/replay-trainer)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addSessionCommands(rootCmd, app)
	addReplayCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addScoreCommands(rootCmd, app)

	return rootCmd, nil
}
