// Package ui renders tasks and runs the interactive menu.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/metalagman/taskq/internal/task"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// FormatTask renders one task as a single line.
func FormatTask(t task.Task) string {
	deps := "-"
	if len(t.Dependencies) > 0 {
		deps = strings.Join(t.Dependencies, ", ")
	}
	return fmt.Sprintf("- %s | Priority: %d | Due: %s | Deps: %s", t.Name, t.Priority, t.DueString(), deps)
}

// FormatList renders tasks one per line, or a notice when there are none.
func FormatList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No pending tasks."
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "Pending tasks:")
	for _, t := range tasks {
		lines = append(lines, FormatTask(t))
	}
	return strings.Join(lines, "\n")
}

// FormatNext renders the result of a peek.
func FormatNext(t task.Task) string {
	return fmt.Sprintf("Next task: %s | Priority: %d | Due: %s", t.Name, t.Priority, t.DueString())
}

// FormatDue describes due relative to the calendar day of now.
func FormatDue(due, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.Equal(today) {
		return "due today"
	}
	return "due " + humanize.RelTime(due, today, "ago", "from now")
}
