package main

import (
	"fmt"
	"strings"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/service"
	"github.com/Nomadcxx/teamsort/internal/ui"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	fieldTable = iota
	fieldDir
	fieldTeam
	fieldPhoto
	fieldCount
)

var (
	Primary   = lipgloss.Color("#7C3AED")
	Secondary = lipgloss.Color("#06B6D4")
	FgMuted   = lipgloss.Color("#6B7280")
	ErrorCol  = lipgloss.Color("#EF4444")

	titleStyle   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(14)
	focusStyle   = lipgloss.NewStyle().Foreground(Secondary).Bold(true).Width(14)
	hintStyle    = lipgloss.NewStyle().Foreground(FgMuted)
	errTextStyle = lipgloss.NewStyle().Foreground(ErrorCol)
)

var fieldLabels = [fieldCount]string{"Roster", "Photo folder", "Team column", "Photo column"}

// runFunc performs one run for the form
type runFunc func(req reorganize.Request, dryRun bool) (*service.Result, error)

type runFinishedMsg struct {
	res *service.Result
	err error
}

type tuiModel struct {
	inputs  []textinput.Model
	focused int
	presets [fieldCount][]string
	dryRun  bool
	run     runFunc

	running bool
	spinner spinner.Model
	result  *service.Result
	err     error
}

func newTUIModel(cfg *config.Config, req reorganize.Request, dry bool, run runFunc) tuiModel {
	m := tuiModel{
		inputs:  make([]textinput.Model, fieldCount),
		dryRun:  dry,
		run:     run,
		spinner: spinner.New(),
	}
	m.spinner.Spinner = spinner.Dot
	m.presets[fieldTeam] = cfg.Columns.TeamPresets
	m.presets[fieldPhoto] = cfg.Columns.PhotoPresets

	values := [fieldCount]string{req.Table, req.Dir, req.TeamColumn, req.PhotoColumn}
	if values[fieldTeam] == "" {
		values[fieldTeam] = cfg.Columns.Team
	}
	if values[fieldPhoto] == "" {
		values[fieldPhoto] = cfg.Columns.Photo
	}
	placeholders := [fieldCount]string{"e.g., ~/shoot/roster.csv", "e.g., ~/shoot/photos", "Team", "Photo"}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Width = 50
		ti.CharLimit = 500
		ti.SetValue(values[i])
		ti.PromptStyle = lipgloss.NewStyle().Foreground(Secondary)
		m.inputs[i] = ti
	}
	m.inputs[0].Focus()
	return m
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tuiModel) request() reorganize.Request {
	return reorganize.Request{
		Table:       strings.TrimSpace(m.inputs[fieldTable].Value()),
		Dir:         strings.TrimSpace(m.inputs[fieldDir].Value()),
		TeamColumn:  strings.TrimSpace(m.inputs[fieldTeam].Value()),
		PhotoColumn: strings.TrimSpace(m.inputs[fieldPhoto].Value()),
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runFinishedMsg:
		m.running = false
		m.result = msg.res
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m tuiModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "down":
		return m.focus((m.focused + 1) % fieldCount), nil

	case "shift+tab", "up":
		return m.focus((m.focused + fieldCount - 1) % fieldCount), nil

	case "left", "right":
		if len(m.presets[m.focused]) > 0 {
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			m.cyclePreset(step)
			return m, nil
		}

	case "ctrl+n":
		m.dryRun = !m.dryRun
		return m, nil

	case "enter":
		if m.running {
			return m, nil
		}
		req := m.request()
		if err := req.Validate(); err != nil {
			m.err = err
			m.result = nil
			return m, nil
		}
		m.running = true
		m.err = nil
		m.result = nil
		run, dry := m.run, m.dryRun
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			res, err := run(req, dry)
			return runFinishedMsg{res: res, err: err}
		})
	}

	if m.running {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m tuiModel) focus(i int) tuiModel {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
	return m
}

// cyclePreset moves the focused column field to the next or previous
// preset. Free text starts from the first (or last) preset.
func (m *tuiModel) cyclePreset(step int) {
	presets := m.presets[m.focused]
	current := strings.TrimSpace(m.inputs[m.focused].Value())

	idx := -1
	for i, p := range presets {
		if p == current {
			idx = i
			break
		}
	}

	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(presets) - 1
	default:
		idx = (idx + step + len(presets)) % len(presets)
	}
	m.inputs[m.focused].SetValue(presets[idx])
	m.inputs[m.focused].CursorEnd()
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("teamsort"))
	if m.dryRun {
		b.WriteString("  " + hintStyle.Render("[dry run]"))
	}
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == m.focused {
			label = focusStyle.Render(fieldLabels[i])
		}
		b.WriteString(label + in.View())
		if len(m.presets[i]) > 0 {
			b.WriteString("  " + hintStyle.Render("◀ "+strings.Join(m.presets[i], " · ")+" ▶"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(m.spinner.View() + " Sorting photos...\n")
	case m.result != nil && m.result.Report != nil:
		ui.RenderSummary(&b, m.result.Report)
	}
	if m.err != nil {
		b.WriteString(errTextStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + hintStyle.Render("tab/↑↓ move · ←/→ presets · ctrl+n dry run · enter run · esc quit") + "\n")
	return b.String()
}

func newTUICmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Fill in a form and run interactively",
		Long: `Open a terminal form with the four run inputs: roster file, photo
folder, team column and photo column. The column fields cycle through
the presets from [columns] with the left and right arrows and also
accept any column name. Press enter to run; the form stays open for
another run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := flags.options(cmd, a.runner)
			run := func(req reorganize.Request, dry bool) (*service.Result, error) {
				o := opts
				o.DryRun = dry
				return a.runner.Run(history.TriggerTUI, req, o)
			}

			m := newTUIModel(a.cfg, flags.request(), opts.DryRun, run)
			if _, err := tea.NewProgram(m).Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}

	// the form collects table and dir when they are not given
	flags.register(cmd, false)

	return cmd
}
