package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ------- styling (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	focusStyle = paneStyle.BorderForeground(lipgloss.Color("12"))
	modalStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
	sharedMark   = "⇄"
)

// applyTheme mirrors the CLI themes for the full-screen UI.
func applyTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		titleStyle = titleStyle.Foreground(lipgloss.Color("13"))
		accentStyle = accentStyle.Foreground(lipgloss.Color("14"))
		pendingStyle = pendingStyle.Foreground(lipgloss.Color("11"))
		focusStyle = focusStyle.BorderForeground(lipgloss.Color("13"))
		modalStyle = modalStyle.BorderForeground(lipgloss.Color("13"))
		boxChecked, boxUnchecked = "◼", "◻"
	case "mono":
		plain := lipgloss.NewStyle()
		successStyle, pendingStyle, accentStyle, errorStyle = plain, plain, plain, plain.Bold(true)
		paneStyle = paneStyle.Border(lipgloss.NormalBorder()).UnsetBorderForeground()
		focusStyle = paneStyle.Border(lipgloss.ThickBorder())
		modalStyle = modalStyle.Border(lipgloss.NormalBorder()).UnsetBorderForeground()
		boxChecked, boxUnchecked, sharedMark = "[x]", "[ ]", "~"
	}
}

// progressLine renders "done/total" as a bar sized to width.
func progressLine(done, total, width int) string {
	if width < 5 {
		width = 5
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	bar := successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	return bar + " " + accentStyle.Render(progressText(done, total))
}

func progressText(done, total int) string {
	return fmt.Sprintf("%d/%d done", done, total)
}
