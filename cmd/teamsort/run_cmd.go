package main

import (
	"encoding/json"
	"fmt"

	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/service"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/spf13/cobra"
)

// runFlags are shared by 'run' and 'watch'
type runFlags struct {
	table           string
	dir             string
	teamColumn      string
	photoColumn     string
	continueOnError bool
	createTeamDirs  bool
	names           string
	backend         string
}

func (f *runFlags) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVarP(&f.table, "table", "t", "", "roster file (.csv or .xlsx)")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "directory holding the photos")
	cmd.Flags().StringVar(&f.teamColumn, "team-column", "", "roster column with team names (default from config)")
	cmd.Flags().StringVar(&f.photoColumn, "photo-column", "", "roster column with photo filenames (default from config)")
	cmd.Flags().BoolVar(&f.continueOnError, "continue-on-error", false, "keep going after a failed row")
	cmd.Flags().BoolVar(&f.createTeamDirs, "create-team-dirs", false, "create a team folder even when its photo is missing")
	cmd.Flags().StringVar(&f.names, "names", "", "invalid team/photo names: reject or sanitize")
	cmd.Flags().StringVarP(&f.backend, "backend", "b", "", "move backend: auto, rename, native")
	if required {
		cmd.MarkFlagRequired("table")
		cmd.MarkFlagRequired("dir")
	}
}

func (f *runFlags) request() reorganize.Request {
	return reorganize.Request{
		Table:       f.table,
		Dir:         f.dir,
		TeamColumn:  f.teamColumn,
		PhotoColumn: f.photoColumn,
	}
}

// options starts from config and applies only the flags that were set
func (f *runFlags) options(cmd *cobra.Command, runner *service.Runner) service.RunOptions {
	opts := runner.Defaults()
	if cmd.Flags().Changed("dry-run") {
		opts.DryRun = dryRun
	}
	if cmd.Flags().Changed("continue-on-error") {
		opts.ContinueOnError = f.continueOnError
	}
	if cmd.Flags().Changed("create-team-dirs") {
		opts.EagerDirs = f.createTeamDirs
	}
	if f.names != "" {
		opts.NamePolicy = f.names
	}
	if f.backend != "" {
		opts.Backend = f.backend
	}
	return opts
}

func newRunCmd() *cobra.Command {
	var (
		flags   runFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sort photos into team folders once",
		Long: `Read the roster and move every listed photo into its team folder.

Rows are processed in order. By default the first failure stops the run;
photos already moved stay where they are.

Examples:
  teamsort run --table roster.csv --dir ./photos
  teamsort run -t roster.xlsx -d ./photos --team-column Division --photo-column SPA
  teamsort run -t roster.csv -d ./photos --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, runErr := a.runner.Run(history.TriggerCLI, flags.request(), flags.options(cmd, a.runner))

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if res != nil {
					if err := enc.Encode(res); err != nil {
						return err
					}
				}
				return runErr
			}

			if res != nil && res.Report != nil {
				ui.RenderReport(out, res.Report, verbose)
				if res.RunID != "" && verbose {
					fmt.Fprintln(out, ui.Dim("Run "+res.RunID))
				}
			}
			return runErr
		},
	}

	flags.register(cmd, true)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}
