package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nturan/flashgram-bot/internal/config"
	"github.com/nturan/flashgram-bot/internal/session"
	"github.com/nturan/flashgram-bot/internal/spacedrep"
	"github.com/nturan/flashgram-bot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "flashgram",
	Short: "Spaced-repetition flashcards in your terminal",
	Long: "Flashgram schedules flashcard reviews with an SM-2 scheduler.\n" +
		"Cards, sessions and review history live in a local SQLite database.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FLASHGRAM_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().Int64("owner", 1, "Learner ID the command acts for")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges the config file, FLASHGRAM_* environment variables and
// command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

// resolveDBPath returns the database path from config (which already folds
// in the --db flag), then the FLASHGRAM_DB env var, then the XDG default.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Storage.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore builds the store for commands that bypass the session engine.
// The caller must Close it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// openEngine builds the full stack for one command invocation: config,
// store, scheduler and session engine. The caller must Close the store.
func openEngine(cmd *cobra.Command) (*session.Engine, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	scheduler, err := spacedrep.NewScheduler(cfg.Scheduler.Params())
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return session.NewEngine(st, scheduler, cfg.Session.Engine()), st, nil
}

func ownerID(cmd *cobra.Command) int64 {
	id, _ := cmd.Flags().GetInt64("owner")
	return id
}
