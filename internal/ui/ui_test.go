package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/roster"
	"github.com/stretchr/testify/assert"
)

func init() {
	DisableColors()
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1.5 kB", FormatBytes(1500))
	assert.Equal(t, "0 B", FormatBytes(-5))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("Photo", "Team")
	tbl.AddRow("a.jpg", "Red")
	tbl.AddRow("long-photo-name.jpg")

	var buf bytes.Buffer
	tbl.Render(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[3], "a.jpg")
	assert.Contains(t, lines[4], "long-photo-name.jpg")
	for _, l := range lines[1:] {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(l)), "rows align")
	}
}

func TestTable_MaxWidthTruncates(t *testing.T) {
	tbl := NewTable("Detail")
	tbl.SetMaxWidth(20)
	tbl.AddRow(strings.Repeat("x", 40))

	var buf bytes.Buffer
	tbl.Render(&buf)
	assert.Contains(t, buf.String(), "...")
}

func TestCompactTable(t *testing.T) {
	var buf bytes.Buffer
	CompactTable(&buf, []string{"A", "B"}, [][]string{{"one", "two"}, {"x"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "A    B", lines[0])
	assert.Equal(t, "one  two", lines[2])
}

func TestRenderReport(t *testing.T) {
	r := &reorganize.Report{
		Moved:       1,
		Missing:     1,
		Failed:      1,
		Bytes:       2048,
		DirsCreated: []string{"/p/Red"},
		Aborted:     true,
		Outcomes: []reorganize.Outcome{
			{Row: roster.Row{Line: 1}, Team: "Red", Photo: "a.jpg", Action: reorganize.ActionMoved, Bytes: 2048},
			{Row: roster.Row{Line: 2}, Team: "Blue", Photo: "c.jpg", Action: reorganize.ActionMissing},
			{Row: roster.Row{Line: 3}, Team: "Red", Photo: "d.jpg", Action: reorganize.ActionFailed, Err: errors.New("boom")},
		},
	}

	var buf bytes.Buffer
	RenderReport(&buf, r, false)
	out := buf.String()
	assert.Contains(t, out, "a.jpg")
	assert.NotContains(t, out, "c.jpg")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "1 moved (2.0 kB)")
	assert.Contains(t, out, "1 rows failed")
	assert.Contains(t, out, "Stopped at the first failure")

	buf.Reset()
	RenderReport(&buf, r, true)
	assert.Contains(t, buf.String(), "c.jpg")
}

func TestRenderRuns(t *testing.T) {
	var buf bytes.Buffer
	RenderRuns(&buf, []history.Run{
		{ID: "0123456789abcdef", Trigger: history.TriggerCLI, Dir: "/x/photos", Moved: 3, StartedAt: time.Now()},
		{ID: "fedcba", Trigger: history.TriggerAPI, Dir: "/y/shots", Error: "schema", StartedAt: time.Now()},
	})
	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "photos")
	assert.Contains(t, out, "error")
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, Confirm(strings.NewReader("yes\n"), &out, "Overwrite?"))
	assert.False(t, Confirm(strings.NewReader("\n"), &out, "Overwrite?"))
	assert.Contains(t, out.String(), "(y/N)")
}
