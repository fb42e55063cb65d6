// Package ui formats command output for the terminal.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = true
)

// DisableColors disables all color output
func DisableColors() {
	colorEnabled = false
	isTerminal = false
	initStyles()
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// IsInteractive reports whether stdin is a terminal
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
}

// Section prints a section header
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	if IsTerminal() {
		fmt.Fprintln(w, "━━━ "+strings.ToUpper(title)+" ━━━")
	} else {
		fmt.Fprintln(w, strings.ToUpper(title))
		fmt.Fprintln(w, strings.Repeat("=", len(title)+6))
	}
}

// FormatBytes formats bytes to human-readable format using go-humanize
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatAge formats a timestamp relative to now ("3 minutes ago")
func FormatAge(t time.Time) string {
	return humanize.Time(t)
}

// Confirm prompts for a yes/no answer on in. Anything but y/yes is no.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt+" (y/N): ")
	line, _ := bufio.NewReader(in).ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}
