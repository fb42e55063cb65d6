package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles - will be initialized based on terminal support
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	teamStyle    lipgloss.Style
	pathStyle    lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		successStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		warningStyle = lipgloss.NewStyle()
		infoStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
		teamStyle = lipgloss.NewStyle()
		pathStyle = lipgloss.NewStyle()
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	teamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
}

// Success prints success text
func Success(text string) string {
	return successStyle.Render(text)
}

// Error prints error text
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning prints warning text
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info prints info text
func Info(text string) string {
	return infoStyle.Render(text)
}

// Dim prints dim text
func Dim(text string) string {
	return dimStyle.Render(text)
}

func Team(text string) string {
	return teamStyle.Render(text)
}

// Path prints path text
func Path(text string) string {
	return pathStyle.Render(text)
}

// SuccessMsg prints a success message
func SuccessMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg prints an error message
func ErrorMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg prints a warning message
func WarningMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg prints an info message
func InfoMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
