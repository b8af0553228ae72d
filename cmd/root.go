package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/standup-bot/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dbPath     string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "standup-bot",
	Short: "Run asynchronous daily standups over chat",
	Long: `A chat bot that runs the team's daily standup asynchronously.

On a schedule it asks every participant a fixed list of questions by direct
message, posts each completed standup to the team channel, and after the
response window posts a rollup of who skipped or did not respond.

Quick Start:
  standup-bot run --now                  # Start the bot and run a standup now
  standup-bot sessions                   # List past standups
  standup-bot show 2026-10-18            # View one day's answers
  standup-bot export --format md         # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $STANDUP_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (overrides the config file)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads the config selected by --config, applying --db.
func loadConfig() (*internal.Config, error) {
	path, err := internal.ResolveConfigPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate config: %w", err)
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	internal.LogDebug("Loaded config from %s", path)
	return cfg, nil
}

// openStore opens the database configured in cfg.
func openStore(cfg *internal.Config) (*internal.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate database: %w", err)
	}
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	store, err := internal.NewStore(db, internal.SystemClock{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	internal.LogDebug("Opened database %s", path)
	return store, nil
}
