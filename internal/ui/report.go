package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
)

// ActionLabel colors an outcome action for display
func ActionLabel(a reorganize.Action) string {
	switch a {
	case reorganize.ActionMoved:
		return Success(string(a))
	case reorganize.ActionPlanned:
		return Info(string(a))
	case reorganize.ActionFailed:
		return Error(string(a))
	case reorganize.ActionMissing, reorganize.ActionEmptyPhoto:
		return Dim(string(a))
	default:
		return Warning(string(a))
	}
}

// RenderReport writes the per-row table and a summary. Rows whose photo
// was missing are listed only when verbose is set.
func RenderReport(w io.Writer, r *reorganize.Report, verbose bool) {
	if r == nil {
		return
	}

	t := NewTable("Row", "Photo", "Team", "Result", "Detail")
	for _, o := range r.Outcomes {
		if !verbose && (o.Action == reorganize.ActionMissing || o.Action == reorganize.ActionEmptyPhoto) {
			continue
		}
		detail := ""
		switch {
		case o.Err != nil:
			detail = o.Err.Error()
		case o.Action == reorganize.ActionMoved || o.Action == reorganize.ActionPlanned:
			detail = FormatBytes(o.Bytes)
		}
		t.AddRow(strconv.Itoa(o.Row.Line), o.Photo, Team(o.Team), ActionLabel(o.Action), detail)
	}
	if t.Len() > 0 {
		t.Render(w)
	}

	RenderSummary(w, r)
}

// RenderSummary writes the one-paragraph totals of a run
func RenderSummary(w io.Writer, r *reorganize.Report) {
	if r.DryRun {
		fmt.Fprintf(w, "%s %d to move, %d missing, %d left in place\n",
			Info("Dry run:"), r.Planned, r.Missing, r.InPlace)
	} else {
		fmt.Fprintf(w, "%s %d moved (%s), %d missing, %d left in place, %d team folders created\n",
			Success("Done:"), r.Moved, FormatBytes(r.Bytes), r.Missing, r.InPlace, len(r.DirsCreated))
	}
	if r.EmptyPhoto > 0 {
		fmt.Fprintf(w, "%s %d rows had no photo name\n", Dim("Skipped:"), r.EmptyPhoto)
	}
	if r.Failed > 0 {
		fmt.Fprintf(w, "%s %d rows failed\n", Error("Failed:"), r.Failed)
	}
	if r.Aborted {
		fmt.Fprintln(w, Warning("Stopped at the first failure; earlier moves were kept."))
	}
	fmt.Fprintln(w, Dim("Took "+FormatDuration(r.Duration)))
}

// RenderRuns writes a compact list of recorded runs
func RenderRuns(w io.Writer, runs []history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := Success("ok")
		switch {
		case run.Error != "":
			status = Error("error")
		case run.DryRun:
			status = Info("dry-run")
		}
		rows = append(rows, []string{
			shortID(run.ID),
			FormatAge(run.StartedAt),
			string(run.Trigger),
			filepath.Base(run.Dir),
			strconv.Itoa(run.Moved),
			strconv.Itoa(run.Missing),
			strconv.Itoa(run.Failed),
			status,
		})
	}
	CompactTable(w, []string{"ID", "WHEN", "BY", "DIR", "MOVED", "MISSING", "FAILED", "STATUS"}, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
