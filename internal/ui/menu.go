package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/taskq/internal/task"
)

// Service is the subset of task.Service driven by the menu.
type Service interface {
	Add(ctx context.Context, d task.Draft) (task.Task, error)
	Complete(ctx context.Context, name string) (task.Task, error)
	List(order task.Order) []task.Task
	Peek() (task.Task, error)
}

type mode int

const (
	modeMenu mode = iota
	modeAdd
	modeComplete
)

const (
	actionAdd = iota
	actionListPriority
	actionListDue
	actionComplete
	actionNext
	actionExit
)

var menuItems = []string{
	"Add task",
	"List tasks by priority",
	"List tasks by due date",
	"Complete a task",
	"Show next task",
	"Exit",
}

// Add form field order.
const (
	fieldName = iota
	fieldPriority
	fieldDue
	fieldDeps
)

type resultMsg struct {
	output string
	err    error
}

// Model is the bubbletea model of the task menu.
type Model struct {
	ctx      context.Context
	svc      Service
	mode     mode
	cursor   int
	inputs   []textinput.Model
	focus    int
	output   string
	err      error
	quitting bool
	// pending is set while a command runs; keys are ignored until its result.
	pending bool
}

// NewModel creates a menu bound to svc.
func NewModel(ctx context.Context, svc Service) Model {
	return Model{ctx: ctx, svc: svc}
}

// Run starts the interactive menu and blocks until the user exits.
func Run(ctx context.Context, svc Service) error {
	program := tea.NewProgram(NewModel(ctx, svc), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run menu: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.output = msg.output
		m.err = msg.err
		m.mode = modeMenu
		m.inputs = nil
		m.pending = false
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.pending {
			return m, nil
		}
		if m.mode == modeMenu {
			return m.updateMenu(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case "enter":
		return m.selectAction(m.cursor)
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= byte('0'+len(menuItems)) {
			m.cursor = int(key[0] - '1')
			return m.selectAction(m.cursor)
		}
	}
	return m, nil
}

func (m Model) selectAction(action int) (tea.Model, tea.Cmd) {
	m.output = ""
	m.err = nil
	switch action {
	case actionAdd:
		m.mode = modeAdd
		m.inputs = newInputs(
			"Task name",
			"Priority (integer, lower is more urgent)",
			"Due date (YYYY-MM-DD)",
			"Dependencies (comma separated, optional)",
		)
		m.focus = 0
		return m, m.inputs[0].Focus()
	case actionComplete:
		m.mode = modeComplete
		m.inputs = newInputs("Name of the task to complete")
		m.focus = 0
		return m, m.inputs[0].Focus()
	case actionListPriority:
		m.pending = true
		return m, m.listCmd(task.OrderPriority)
	case actionListDue:
		m.pending = true
		return m, m.listCmd(task.OrderDueDate)
	case actionNext:
		m.pending = true
		return m, m.nextCmd()
	case actionExit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeMenu
		m.inputs = nil
		return m, nil
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "enter":
		if m.focus < len(m.inputs)-1 {
			return m.moveFocus(1)
		}
		m.pending = true
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m, m.inputs[m.focus].Focus()
}

func (m Model) submit() tea.Cmd {
	if m.mode == modeComplete {
		return m.completeCmd(strings.TrimSpace(m.inputs[0].Value()))
	}
	return m.addCmd(task.Draft{
		Name:         m.inputs[fieldName].Value(),
		Priority:     m.inputs[fieldPriority].Value(),
		DueDate:      m.inputs[fieldDue].Value(),
		Dependencies: task.SplitDependencies(m.inputs[fieldDeps].Value()),
	})
}

func (m Model) addCmd(d task.Draft) tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.Add(m.ctx, d)
		if err != nil {
			return failure(err)
		}
		return resultMsg{output: fmt.Sprintf("Task %q added.", t.Name)}
	}
}

func (m Model) completeCmd(name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Complete(m.ctx, name); err != nil {
			return failure(err)
		}
		return resultMsg{output: fmt.Sprintf("Task %q completed and removed.", name)}
	}
}

func (m Model) listCmd(order task.Order) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{output: FormatList(m.svc.List(order))}
	}
}

func (m Model) nextCmd() tea.Cmd {
	return func() tea.Msg {
		t, err := m.svc.Peek()
		if errors.Is(err, task.ErrEmpty) {
			return resultMsg{output: "No pending tasks."}
		}
		if err != nil {
			return failure(err)
		}
		return resultMsg{output: FormatNext(t)}
	}
}

// failure keeps the menu open for every error; storage failures are logged
// as well since the in-memory state no longer advanced.
func failure(err error) resultMsg {
	if !task.IsDomainError(err) {
		log.Error().Err(err).Msg("task operation failed")
	}
	return resultMsg{err: err}
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Task manager"))
	sb.WriteString("\n\n")

	switch m.mode {
	case modeMenu:
		for i, item := range menuItems {
			line := fmt.Sprintf("%d. %s", i+1, item)
			if i == m.cursor {
				sb.WriteString(cursorStyle.Render("> " + line))
			} else {
				sb.WriteString("  " + line)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("↑/↓ or 1-6 to choose, enter to confirm, q to quit"))
		sb.WriteString("\n")
	default:
		for _, in := range m.inputs {
			sb.WriteString(in.View())
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("enter to continue, tab to switch field, esc to go back"))
		sb.WriteString("\n")
	}

	if m.output != "" {
		sb.WriteString("\n")
		sb.WriteString(m.output)
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	return sb.String()
}

func newInputs(placeholders ...string) []textinput.Model {
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.PlaceholderStyle = dimStyle
		in.Width = 60
		inputs[i] = in
	}
	return inputs
}
