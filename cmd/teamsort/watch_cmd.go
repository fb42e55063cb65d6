package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/logging"
	"github.com/Nomadcxx/teamsort/internal/service"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/Nomadcxx/teamsort/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		flags    runFlags
		debounce time.Duration
		noInit   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run whenever photos arrive or the roster changes",
		Long: `Watch the photo directory and the roster. When new photos land or the
roster is saved, wait for things to settle and run again.

Each run is recorded in history like 'teamsort run'. Runs never overlap;
a trigger that arrives while another teamsort process holds the
directory is skipped.

Examples:
  teamsort watch --table roster.csv --dir ./photos
  teamsort watch -t roster.csv -d ./photos --debounce 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("debounce") {
				debounce = a.cfg.Watch.Debounce
			}

			req := a.runner.Normalize(flags.request())
			if err := req.Validate(); err != nil {
				return err
			}
			if info, err := os.Stat(req.Dir); err != nil || !info.IsDir() {
				return fmt.Errorf("photo directory %s is not accessible", req.Dir)
			}
			opts := flags.options(cmd, a.runner)
			out := cmd.OutOrStdout()

			run := func() {
				res, err := a.runner.Run(history.TriggerWatch, req, opts)
				if errors.Is(err, service.ErrBusy) {
					a.logger.Info("watch", "Skipped trigger, directory busy", logging.F("dir", req.Dir))
					return
				}
				if res != nil && res.Report != nil {
					ui.RenderSummary(out, res.Report)
				}
				if err != nil {
					ui.ErrorMsg(out, "%v", err)
				}
			}

			trig := watcher.NewRunTrigger(req.Table, req.Dir, debounce, run)
			defer trig.Stop()

			w, err := watcher.NewWatcher(trig, watcher.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Watch(trig.Paths()); err != nil {
				return err
			}

			if !noInit {
				trig.Fire()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui.InfoMsg(out, "Watching %s (Ctrl+C to stop)", ui.Path(req.Dir))
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().DurationVar(&debounce, "debounce", 2*time.Second, "quiet period before a run (default from config)")
	cmd.Flags().BoolVar(&noInit, "no-initial-run", false, "wait for the first change instead of running at start")

	return cmd
}
