// Package service runs the reorganizer on behalf of the front ends. It
// applies configuration defaults, serializes runs per photo directory and
// records every run in the history store.
package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/logging"
	"github.com/Nomadcxx/teamsort/internal/paths"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/transfer"
	"github.com/gofrs/flock"
)

// ErrBusy is returned when another run holds the lock for the same directory
var ErrBusy = errors.New("another run is in progress for this directory")

// RunOptions are the per-run switches. Front ends start from Defaults and
// apply their own flags on top.
type RunOptions struct {
	DryRun          bool
	ContinueOnError bool
	EagerDirs       bool
	NamePolicy      string
	Backend         string
}

// Result pairs a report with the history id it was stored under. RunID is
// empty when history is disabled.
type Result struct {
	RunID  string             `json:"run_id,omitempty"`
	Report *reorganize.Report `json:"report,omitempty"`
}

// Runner executes reorganize requests for one configuration
type Runner struct {
	cfg     *config.Config
	store   *history.Store
	logger  *logging.Logger
	options transfer.TransferOptions
}

// NewRunner creates a runner. store may be nil to skip history.
func NewRunner(cfg *config.Config, store *history.Store, logger *logging.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	options, err := transfer.OptionsFromConfig(cfg)
	if err != nil {
		logger.Warn("service", "Ignoring invalid permission settings",
			logging.F("error", err.Error()))
	}
	return &Runner{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		options: options,
	}
}

// Config returns the configuration the runner was built with
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// History returns the history store, or nil
func (r *Runner) History() *history.Store {
	return r.store
}

// Defaults returns the run options from the [options] config section
func (r *Runner) Defaults() RunOptions {
	return RunOptions{
		DryRun:          r.cfg.Options.DryRun,
		ContinueOnError: r.cfg.Options.ContinueOnError,
		EagerDirs:       r.cfg.Options.CreateEmptyTeamDirs,
		NamePolicy:      r.cfg.Options.NamePolicy,
		Backend:         r.cfg.Options.Backend,
	}
}

// Normalize fills empty column names from config and makes paths absolute
// so that the same directory always maps to the same lock.
func (r *Runner) Normalize(req reorganize.Request) reorganize.Request {
	if strings.TrimSpace(req.TeamColumn) == "" {
		req.TeamColumn = r.cfg.Columns.Team
	}
	if strings.TrimSpace(req.PhotoColumn) == "" {
		req.PhotoColumn = r.cfg.Columns.Photo
	}
	req.Table = expandPath(req.Table)
	req.Dir = expandPath(req.Dir)
	return req
}

func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := paths.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}

// Run reorganizes one directory. The returned Result carries the report
// whenever the reorganizer produced one, including on row failures.
func (r *Runner) Run(trigger history.Trigger, req reorganize.Request, opts RunOptions) (*Result, error) {
	req = r.Normalize(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := reorganize.ParsePolicy(opts.NamePolicy)
	if err != nil {
		return nil, err
	}
	kind, err := transfer.ParseBackend(opts.Backend)
	if err != nil {
		return nil, err
	}
	backend, err := transfer.New(kind)
	if err != nil {
		return nil, err
	}

	unlock, err := r.lock(req.Dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report, runErr := reorganize.Run(req,
		reorganize.WithDryRun(opts.DryRun),
		reorganize.WithContinueOnError(opts.ContinueOnError),
		reorganize.WithEagerDirs(opts.EagerDirs),
		reorganize.WithNamePolicy(policy),
		reorganize.WithTransferer(backend),
		reorganize.WithTransferOptions(r.options),
		reorganize.WithLogger(r.logger),
	)

	result := &Result{Report: report}

	if r.store != nil {
		run, err := r.store.RecordRun(trigger, req, report, runErr)
		if err != nil {
			r.logger.Warn("service", "Failed to record run in history",
				logging.F("error", err.Error()),
				logging.F("dir", req.Dir))
		} else {
			result.RunID = run.ID
		}
	}

	if runErr != nil {
		r.logger.Error("service", "Run failed", runErr,
			logging.F("trigger", string(trigger)),
			logging.F("dir", req.Dir))
		return result, runErr
	}
	return result, nil
}

// lock takes the per-directory run lock without waiting
func (r *Runner) lock(dir string) (func(), error) {
	lockPath, err := paths.LockPath(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve lock path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger.Warn("service", "Failed to release run lock", logging.F("lock", lockPath))
		}
	}, nil
}
