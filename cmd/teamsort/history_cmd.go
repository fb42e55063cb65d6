package main

import (
	"fmt"
	"strconv"

	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs",
		Long: `List recent runs, or show every row of one run.

Examples:
  teamsort history
  teamsort history --limit 50
  teamsort history 3f2a9c1e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.store == nil {
				return fmt.Errorf("run history is disabled (history.enabled = false)")
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				runs, err := a.store.RecentRuns(limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}
				ui.RenderRuns(out, runs)
				return nil
			}

			run, err := a.store.GetRun(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Run:     %s (%s, %s)\n", run.ID, run.Trigger, ui.FormatAge(run.StartedAt))
			fmt.Fprintf(out, "Roster:  %s [%s / %s]\n", ui.Path(run.Table), run.TeamColumn, run.PhotoColumn)
			fmt.Fprintf(out, "Photos:  %s\n", ui.Path(run.Dir))
			if run.Error != "" {
				fmt.Fprintf(out, "Error:   %s\n", ui.Error(run.Error))
			}
			fmt.Fprintln(out)

			t := ui.NewTable("Row", "Photo", "Team", "Result", "Detail")
			for _, op := range run.Operations {
				detail := op.Error
				if detail == "" && op.Bytes > 0 {
					detail = ui.FormatBytes(op.Bytes)
				}
				t.AddRow(strconv.Itoa(op.Line), op.Photo, ui.Team(op.Team), op.Action, detail)
			}
			t.Render(out)
			fmt.Fprintf(out, "%d moved, %d missing, %d failed in %s\n",
				run.Moved, run.Missing, run.Failed, ui.FormatDuration(run.Duration))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	return cmd
}
