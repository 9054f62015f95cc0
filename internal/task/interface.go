// Package task implements the task ordering and dependency-integrity engine.
package task

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the textual form of a due date.
const DateLayout = time.DateOnly

// Task describes a pending unit of work.
type Task struct {
	Name         string
	Priority     int
	DueDate      time.Time
	Dependencies []string
}

// Draft is unparsed input for a new task.
type Draft struct {
	Name         string
	Priority     string
	DueDate      string
	Dependencies []string
}

// Persister stores and restores the full task set.
type Persister interface {
	Save(ctx context.Context, tasks []Task) error
	Load(ctx context.Context) ([]Task, error)
}

// New builds a task from already-typed fields.
func New(name string, priority int, due time.Time, deps []string) Task {
	return Task{
		Name:         name,
		Priority:     priority,
		DueDate:      dateOnly(due),
		Dependencies: cloneDeps(deps),
	}
}

// DueString returns the due date formatted as YYYY-MM-DD.
func (t Task) DueString() string {
	return t.DueDate.Format(DateLayout)
}

// DependsOn reports whether name is one of the task's dependencies.
func (t Task) DependsOn(name string) bool {
	return slices.Contains(t.Dependencies, name)
}

// Less orders tasks by priority, then by due date.
func Less(a, b Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.DueDate.Before(b.DueDate)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// Parse validates a draft and converts it into a task. The name check runs
// first; duplicate detection belongs to the store.
func (d Draft) Parse() (Task, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Task{}, &ValidationError{Field: "name", Value: d.Name, Reason: "must not be empty"}
	}
	priority, err := strconv.Atoi(strings.TrimSpace(d.Priority))
	if err != nil {
		return Task{}, &ValidationError{Field: "priority", Value: d.Priority, Reason: "must be an integer"}
	}
	due, err := ParseDate(d.DueDate)
	if err != nil {
		return Task{}, &ValidationError{Field: "due_date", Value: d.DueDate, Reason: "must be a YYYY-MM-DD date"}
	}
	return New(name, priority, due, d.Dependencies), nil
}

// SplitDependencies turns a comma-separated list into dependency names.
// Blank entries are dropped.
func SplitDependencies(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneDeps(deps []string) []string {
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

func (t Task) clone() Task {
	t.Dependencies = cloneDeps(t.Dependencies)
	return t
}
