package main

import (
	"errors"
	"testing"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m tuiModel, keys ...string) (tuiModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(tuiModel)
	}
	return m, cmd
}

func newTestModel(run runFunc) tuiModel {
	if run == nil {
		run = func(reorganize.Request, bool) (*service.Result, error) { return &service.Result{}, nil }
	}
	return newTUIModel(config.DefaultConfig(), reorganize.Request{}, false, run)
}

func TestTUI_DefaultsFromConfig(t *testing.T) {
	m := newTestModel(nil)
	req := m.request()
	assert.Equal(t, "Team", req.TeamColumn)
	assert.Equal(t, "Photo", req.PhotoColumn)
	assert.Equal(t, fieldTable, m.focused)
}

func TestTUI_TabMovesFocus(t *testing.T) {
	m := newTestModel(nil)

	m, _ = press(t, m, "tab", "tab")
	assert.Equal(t, fieldTeam, m.focused)

	m, _ = press(t, m, "shift+tab", "shift+tab", "shift+tab")
	assert.Equal(t, fieldPhoto, m.focused, "focus wraps around")
}

func TestTUI_ColumnPresetsCycle(t *testing.T) {
	m := newTestModel(nil)
	m, _ = press(t, m, "tab", "tab")

	m, _ = press(t, m, "right")
	assert.Equal(t, "Division", m.request().TeamColumn)
	m, _ = press(t, m, "right")
	assert.Equal(t, "Period", m.request().TeamColumn)
	m, _ = press(t, m, "right")
	assert.Equal(t, "Team", m.request().TeamColumn)
	m, _ = press(t, m, "left")
	assert.Equal(t, "Period", m.request().TeamColumn)

	m, _ = press(t, m, "tab", "right")
	assert.Equal(t, "SPA", m.request().PhotoColumn)
}

func TestTUI_FreeTextColumn(t *testing.T) {
	m := newTestModel(nil)
	m, _ = press(t, m, "tab", "tab")
	m.inputs[fieldTeam].SetValue("")

	m, _ = press(t, m, "G", "r", "o", "u", "p")
	assert.Equal(t, "Group", m.request().TeamColumn)

	// free text starts cycling from the first preset
	m, _ = press(t, m, "right")
	assert.Equal(t, "Team", m.request().TeamColumn)
}

func TestTUI_EnterValidates(t *testing.T) {
	called := false
	m := newTestModel(func(reorganize.Request, bool) (*service.Result, error) {
		called = true
		return nil, nil
	})

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.False(t, m.running)
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "table")
	assert.False(t, called)
}

func TestTUI_EnterRuns(t *testing.T) {
	var got reorganize.Request
	var gotDry bool
	m := newTestModel(func(req reorganize.Request, dry bool) (*service.Result, error) {
		got, gotDry = req, dry
		return &service.Result{Report: &reorganize.Report{Moved: 2}}, nil
	})
	m.inputs[fieldTable].SetValue(" roster.csv ")
	m.inputs[fieldDir].SetValue("photos")

	m, _ = press(t, m, "ctrl+n")
	assert.True(t, m.dryRun)

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	// run the command the way the program would, then deliver the result
	msg := runCmdResult(t, cmd)
	next, _ := m.Update(msg)
	m = next.(tuiModel)

	assert.False(t, m.running)
	assert.Equal(t, "roster.csv", got.Table)
	assert.Equal(t, "photos", got.Dir)
	assert.True(t, gotDry)
	require.NotNil(t, m.result)
	assert.Contains(t, m.View(), "2 moved")
	assert.Contains(t, m.View(), "[dry run]")
}

func TestTUI_RunErrorShown(t *testing.T) {
	m := newTestModel(nil)
	next, _ := m.Update(runFinishedMsg{err: errors.New("roster column missing")})
	m = next.(tuiModel)
	assert.Contains(t, m.View(), "roster column missing")
}

func TestTUI_EscQuits(t *testing.T) {
	m := newTestModel(nil)
	_, cmd := press(t, m, "esc")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// runCmdResult executes a batch command and returns the runFinishedMsg
func runCmdResult(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if m, ok := c().(runFinishedMsg); ok {
				return m
			}
		}
	}
	if m, ok := msg.(runFinishedMsg); ok {
		return m
	}
	t.Fatal("no runFinishedMsg produced")
	return nil
}
