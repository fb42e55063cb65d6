package main

import (
	"fmt"
	"os"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/logging"
	"github.com/Nomadcxx/teamsort/internal/service"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
	dryRun  bool
	noColor bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "teamsort",
		Short: "Sort photos into team folders from a roster",
		Long: `teamsort reads a roster (CSV or .xlsx) that maps photo filenames to
team names and moves each photo into a folder named after its team.

  Team,Photo
  Red,a.jpg          photos/a.jpg  ->  photos/Red/a.jpg
  Blue,b.jpg         photos/b.jpg  ->  photos/Blue/b.jpg

Photos listed in the roster but not present are skipped.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				ui.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/teamsort/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "preview changes without moving files")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "teamsort %s\n", version)
		},
	}
}

// app bundles what every command that runs the reorganizer needs
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	store  *history.Store
	runner *service.Runner
}

// loadApp reads config and opens the logger and history store. quiet keeps
// log lines off the console, for front ends that own the terminal.
func loadApp(quiet bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Quiet:      quiet,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err == nil {
			a.store, err = history.OpenPath(path)
		}
		if err != nil {
			// history is a convenience; runs still work without it
			logger.Warn("main", "Run history unavailable", logging.F("error", err.Error()))
			a.store = nil
		}
	}

	a.runner = service.NewRunner(cfg, a.store, logger)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Close()
}
