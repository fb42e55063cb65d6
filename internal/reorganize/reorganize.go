// Package reorganize moves photos into one subdirectory per team, driven by
// a roster that maps photo filenames to team names.
//
// Run reads the roster, then walks its rows in order. For each row the team
// and photo values are trimmed, and if <dir>/<photo> exists it is moved to
// <dir>/<team>/<photo>, creating the team directory on first use. Rows
// whose photo is not present are skipped without error. An empty team
// leaves the photo where it is.
//
// By default the first failing row stops the batch and earlier moves are
// kept. WithContinueOnError records the failure on the row and carries on.
package reorganize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/teamsort/internal/logging"
	"github.com/Nomadcxx/teamsort/internal/roster"
	"github.com/Nomadcxx/teamsort/internal/transfer"
)

// ErrFilesystem wraps OS-level failures creating team directories or
// moving photos.
var ErrFilesystem = errors.New("filesystem error")

// Request carries the four user inputs of a run.
type Request struct {
	Table       string `json:"table"`
	Dir         string `json:"dir"`
	TeamColumn  string `json:"team_column"`
	PhotoColumn string `json:"photo_column"`
}

func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Table) == "" {
		missing = append(missing, "table")
	}
	if strings.TrimSpace(r.Dir) == "" {
		missing = append(missing, "dir")
	}
	if strings.TrimSpace(r.TeamColumn) == "" {
		missing = append(missing, "team column")
	}
	if strings.TrimSpace(r.PhotoColumn) == "" {
		missing = append(missing, "photo column")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type Action string

const (
	ActionMoved      Action = "moved"
	ActionMissing    Action = "missing"
	ActionInPlace    Action = "in-place"
	ActionEmptyPhoto Action = "empty-photo"
	ActionPlanned    Action = "planned"
	ActionFailed     Action = "failed"
)

// Outcome is what happened to one roster row.
type Outcome struct {
	Row    roster.Row `json:"row"`
	Team   string     `json:"team"`
	Photo  string     `json:"photo"`
	Action Action     `json:"action"`
	Source string     `json:"source,omitempty"`
	Target string     `json:"target,omitempty"`
	Bytes  int64      `json:"bytes,omitempty"`
	Err    error      `json:"-"`
}

type Report struct {
	Request     Request       `json:"request"`
	DryRun      bool          `json:"dry_run"`
	Outcomes    []Outcome     `json:"outcomes"`
	Moved       int           `json:"moved"`
	Missing     int           `json:"missing"`
	InPlace     int           `json:"in_place"`
	EmptyPhoto  int           `json:"empty_photo"`
	Planned     int           `json:"planned"`
	Failed      int           `json:"failed"`
	DirsCreated []string      `json:"dirs_created"`
	Bytes       int64         `json:"bytes"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
	// Aborted is set when a failure stopped the batch before the last row.
	Aborted bool `json:"aborted"`
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionMoved:
		r.Moved++
		r.Bytes += o.Bytes
	case ActionMissing:
		r.Missing++
	case ActionInPlace:
		r.InPlace++
	case ActionEmptyPhoto:
		r.EmptyPhoto++
	case ActionPlanned:
		r.Planned++
	case ActionFailed:
		r.Failed++
	}
}

// Err joins the errors of every failed row, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", o.Row.Line, o.Err))
		}
	}
	return errors.Join(errs...)
}

type Reorganizer struct {
	dryRun          bool
	continueOnError bool
	eagerDirs       bool
	policy          Policy
	transferer      transfer.Transferer
	opts            transfer.TransferOptions
	logger          *logging.Logger
}

type Option func(*Reorganizer)

// WithDryRun reports what would move without touching the filesystem
func WithDryRun(dryRun bool) Option {
	return func(o *Reorganizer) {
		o.dryRun = dryRun
	}
}

// WithContinueOnError keeps processing rows after a failure
func WithContinueOnError(cont bool) Option {
	return func(o *Reorganizer) {
		o.continueOnError = cont
	}
}

// WithEagerDirs creates a team directory for every row with a valid team,
// even when its photo is missing.
func WithEagerDirs(eager bool) Option {
	return func(o *Reorganizer) {
		o.eagerDirs = eager
	}
}

func WithNamePolicy(p Policy) Option {
	return func(o *Reorganizer) {
		o.policy = p
	}
}

func WithTransferer(t transfer.Transferer) Option {
	return func(o *Reorganizer) {
		if t != nil {
			o.transferer = t
		}
	}
}

func WithTransferOptions(opts transfer.TransferOptions) Option {
	return func(o *Reorganizer) {
		o.opts = opts
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(o *Reorganizer) {
		if l != nil {
			o.logger = l
		}
	}
}

func New(options ...Option) *Reorganizer {
	r := &Reorganizer{
		policy:     PolicyReject,
		transferer: transfer.MustNew(transfer.BackendAuto),
		opts:       transfer.DefaultOptions(),
		logger:     logging.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Run is shorthand for New(options...).Run(req).
func Run(req Request, options ...Option) (*Report, error) {
	return New(options...).Run(req)
}

// Run reorganizes req.Dir according to req.Table. Roster and directory
// problems are reported before any row is touched and return a nil Report.
// Row failures return the Report so far together with the error.
func (o *Reorganizer) Run(req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()

	ros, err := roster.Open(req.Table, req.TeamColumn, req.PhotoColumn)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(req.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: photo directory: %v", ErrFilesystem, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: photo directory %s is not a directory", ErrFilesystem, req.Dir)
	}

	o.logger.Info("reorganize", "Run started",
		logging.F("table", req.Table),
		logging.F("dir", req.Dir),
		logging.F("rows", len(ros.Rows)),
		logging.F("dry_run", o.dryRun))

	report := &Report{Request: req, DryRun: o.dryRun, Started: started}
	dirs := make(map[string]bool)

	for _, row := range ros.Rows {
		out := o.processRow(req.Dir, row, dirs, report)
		report.add(out)

		if out.Action == ActionFailed {
			o.logger.Error("reorganize", "Row failed", out.Err,
				logging.F("line", row.Line),
				logging.F("team", out.Team),
				logging.F("photo", out.Photo))
			if !o.continueOnError {
				report.Aborted = true
				report.Duration = time.Since(started)
				return report, fmt.Errorf("row %d: %w", row.Line, out.Err)
			}
		}
	}

	report.Duration = time.Since(started)

	o.logger.Info("reorganize", "Run finished",
		logging.F("moved", report.Moved),
		logging.F("missing", report.Missing),
		logging.F("failed", report.Failed),
		logging.F("dirs_created", len(report.DirsCreated)),
		logging.F("duration", report.Duration))

	if report.Failed > 0 {
		return report, report.Err()
	}
	return report, nil
}

func (o *Reorganizer) processRow(dir string, row roster.Row, dirs map[string]bool, report *Report) Outcome {
	out := Outcome{
		Row:   row,
		Team:  strings.TrimSpace(row.Team),
		Photo: strings.TrimSpace(row.Photo),
	}

	if out.Photo == "" {
		out.Action = ActionEmptyPhoto
		return out
	}

	photo, err := segment("photo", out.Photo, o.policy)
	if err != nil {
		out.Action, out.Err = ActionFailed, err
		return out
	}
	team, err := segment("team", out.Team, o.policy)
	if err != nil {
		out.Action, out.Err = ActionFailed, err
		return out
	}
	// The source keeps the name as written; only the destination is
	// sanitized.
	source, err := sourcePath(dir, out.Photo)
	if err != nil {
		out.Action, out.Err = ActionFailed, err
		return out
	}
	out.Photo, out.Team = photo, team

	teamDir := dir
	if team != "" {
		teamDir = filepath.Join(dir, team)
	}
	out.Source = source
	out.Target = filepath.Join(teamDir, photo)

	info, err := os.Lstat(out.Source)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()):
		// Directories are never photos; they are usually team folders.
		if o.eagerDirs && team != "" && !o.dryRun {
			if err := o.ensureDir(teamDir, dirs, report); err != nil {
				out.Action, out.Err = ActionFailed, err
				return out
			}
		}
		out.Action = ActionMissing
		return out
	case err != nil:
		out.Action, out.Err = ActionFailed, fmt.Errorf("%w: %v", ErrFilesystem, err)
		return out
	}

	if team == "" {
		out.Target = out.Source
		out.Action = ActionInPlace
		return out
	}

	if o.dryRun {
		out.Action = ActionPlanned
		out.Bytes = info.Size()
		return out
	}

	if err := o.ensureDir(teamDir, dirs, report); err != nil {
		out.Action, out.Err = ActionFailed, err
		return out
	}

	result, err := o.transferer.Move(out.Source, out.Target, o.opts)
	if err != nil {
		out.Action, out.Err = ActionFailed, fmt.Errorf("%w: move %s: %v", ErrFilesystem, photo, err)
		return out
	}

	out.Action = ActionMoved
	out.Bytes = result.BytesTotal
	o.logger.Debug("reorganize", "Moved photo",
		logging.F("photo", photo),
		logging.F("team", team),
		logging.F("backend", result.Backend))
	return out
}

// ensureDir creates teamDir once per run. An existing directory is fine.
func (o *Reorganizer) ensureDir(teamDir string, dirs map[string]bool, report *Report) error {
	if dirs[teamDir] {
		return nil
	}

	_, statErr := os.Stat(teamDir)
	existed := statErr == nil

	mode := o.opts.DirMode
	if mode == 0 {
		mode = 0755
	}
	if err := os.MkdirAll(teamDir, mode); err != nil {
		return fmt.Errorf("%w: create team directory: %v", ErrFilesystem, err)
	}

	if !existed {
		if err := transfer.ApplyPermissions(teamDir, o.opts.DirMode, o.opts.TargetUID, o.opts.TargetGID); err != nil {
			return fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
		report.DirsCreated = append(report.DirsCreated, teamDir)
		o.logger.Debug("reorganize", "Created team directory", logging.F("dir", teamDir))
	}

	dirs[teamDir] = true
	return nil
}
