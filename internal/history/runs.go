package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/google/uuid"
)

// ErrNotFound is returned by GetRun for an unknown id
var ErrNotFound = errors.New("run not found")

// Trigger records which front end started a run
type Trigger string

const (
	TriggerCLI   Trigger = "cli"
	TriggerTUI   Trigger = "tui"
	TriggerWatch Trigger = "watch"
	TriggerAPI   Trigger = "api"
)

// Run is one recorded reorganize invocation
type Run struct {
	ID          string        `json:"id"`
	Trigger     Trigger       `json:"trigger"`
	Table       string        `json:"table"`
	Dir         string        `json:"dir"`
	TeamColumn  string        `json:"team_column"`
	PhotoColumn string        `json:"photo_column"`
	DryRun      bool          `json:"dry_run"`
	Moved       int           `json:"moved"`
	Missing     int           `json:"missing"`
	InPlace     int           `json:"in_place"`
	EmptyPhoto  int           `json:"empty_photo"`
	Planned     int           `json:"planned"`
	Failed      int           `json:"failed"`
	DirsCreated int           `json:"dirs_created"`
	Bytes       int64         `json:"bytes"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Aborted     bool          `json:"aborted"`
	Error       string        `json:"error,omitempty"`

	// Operations is only filled by GetRun
	Operations []Operation `json:"operations,omitempty"`
}

// Operation is one roster row of a recorded run
type Operation struct {
	Line   int    `json:"line"`
	Team   string `json:"team"`
	Photo  string `json:"photo"`
	Action string `json:"action"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Bytes  int64  `json:"bytes,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RecordRun stores a finished run. report may be nil when the run failed
// before any row was processed; runErr is stored as text.
func (s *Store) RecordRun(trigger Trigger, req reorganize.Request, report *reorganize.Report, runErr error) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Trigger:     trigger,
		Table:       req.Table,
		Dir:         req.Dir,
		TeamColumn:  req.TeamColumn,
		PhotoColumn: req.PhotoColumn,
		StartedAt:   time.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if report != nil {
		run.DryRun = report.DryRun
		run.Moved = report.Moved
		run.Missing = report.Missing
		run.InPlace = report.InPlace
		run.EmptyPhoto = report.EmptyPhoto
		run.Planned = report.Planned
		run.Failed = report.Failed
		run.DirsCreated = len(report.DirsCreated)
		run.Bytes = report.Bytes
		run.Aborted = report.Aborted
		run.Duration = report.Duration
		if !report.Started.IsZero() {
			run.StartedAt = report.Started
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, triggered_by, table_path, dir, team_column, photo_column, dry_run,
			moved, missing, in_place, empty_photo, planned, failed,
			dirs_created, bytes, started_at, duration_ms, aborted, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Trigger, run.Table, run.Dir, run.TeamColumn, run.PhotoColumn, run.DryRun,
		run.Moved, run.Missing, run.InPlace, run.EmptyPhoto, run.Planned, run.Failed,
		run.DirsCreated, run.Bytes, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
		run.Aborted, nullString(run.Error))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	if report != nil {
		stmt, err := tx.Prepare(`
			INSERT INTO operations (
				run_id, line, team, photo, action, source_path, target_path, bytes, error
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return nil, err
		}
		defer stmt.Close()

		for _, o := range report.Outcomes {
			var errText string
			if o.Err != nil {
				errText = o.Err.Error()
			}
			if _, err := stmt.Exec(run.ID, o.Row.Line, o.Team, o.Photo, string(o.Action),
				nullString(o.Source), nullString(o.Target), o.Bytes, nullString(errText)); err != nil {
				return nil, fmt.Errorf("insert operation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

const runColumns = `id, triggered_by, table_path, dir, team_column, photo_column, dry_run,
	moved, missing, in_place, empty_photo, planned, failed,
	dirs_created, bytes, started_at, duration_ms, aborted, COALESCE(error, '')`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r          Run
		trigger    string
		startedMS  int64
		durationMS int64
	)
	err := row.Scan(&r.ID, &trigger, &r.Table, &r.Dir, &r.TeamColumn, &r.PhotoColumn, &r.DryRun,
		&r.Moved, &r.Missing, &r.InPlace, &r.EmptyPhoto, &r.Planned, &r.Failed,
		&r.DirsCreated, &r.Bytes, &startedMS, &durationMS, &r.Aborted, &r.Error)
	if err != nil {
		return nil, err
	}
	r.Trigger = Trigger(trigger)
	r.StartedAt = time.UnixMilli(startedMS)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return &r, nil
}

// RecentRuns returns the most recent runs, newest first
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns a run together with its per-row operations
func (s *Store) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT line, team, photo, action, COALESCE(source_path, ''),
		       COALESCE(target_path, ''), bytes, COALESCE(error, '')
		FROM operations
		WHERE run_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var op Operation
		if err := rows.Scan(&op.Line, &op.Team, &op.Photo, &op.Action,
			&op.Source, &op.Target, &op.Bytes, &op.Error); err != nil {
			return nil, err
		}
		run.Operations = append(run.Operations, op)
	}
	return run, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
