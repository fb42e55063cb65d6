package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table creates a formatted table for output. Cells may carry lipgloss
// styling; widths are measured on the visible text.
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth int
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers:  headers,
		maxWidth: 120,
	}
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row to the table. Missing cells are left blank.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	total := 0
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range t.rows {
			if cw := lipgloss.Width(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
		widths[i] += 2
		total += widths[i] + 1
	}

	// shrink the widest columns first, never below 10
	for excess := total - t.maxWidth; excess > 0; excess-- {
		maxIdx := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[maxIdx] {
				maxIdx = i
			}
		}
		if widths[maxIdx] <= 10 {
			break
		}
		widths[maxIdx]--
	}
	return widths
}

func border(w io.Writer, widths []int, left, mid, right string) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("─", width)
	}
	fmt.Fprintln(w, left+strings.Join(parts, mid)+right)
}

func (t *Table) line(w io.Writer, widths []int, cells []string) {
	fmt.Fprint(w, "│")
	for i, cell := range cells {
		fmt.Fprint(w, " "+pad(truncate(cell, widths[i]-2), widths[i]-2)+" │")
	}
	fmt.Fprintln(w)
}

// Render writes the table to w
func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := t.columnWidths()
	border(w, widths, "┌", "┬", "┐")
	t.line(w, widths, t.headers)
	border(w, widths, "├", "┼", "┤")
	for _, row := range t.rows {
		t.line(w, widths, row)
	}
	border(w, widths, "└", "┴", "┘")
}

// CompactTable writes a simpler table without borders
func CompactTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range rows {
			if i < len(row) && lipgloss.Width(row[i]) > widths[i] {
				widths[i] = lipgloss.Width(row[i])
			}
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = pad(h, widths[i])
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

	for i, width := range widths {
		cells[i] = strings.Repeat("─", width)
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))

	for _, row := range rows {
		for i := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			cells[i] = pad(val, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// truncate shortens plain text to maxLen runes with an ellipsis. Styled
// text is returned unchanged rather than cut through an escape sequence.
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	if strings.Contains(s, "\x1b") {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
