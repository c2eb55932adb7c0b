package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errCancelled = errors.New("cancelled")

type taskDoneMsg struct {
	err error
}

type loaderModel struct {
	label   string
	task    func(ctx context.Context) error
	ctx     context.Context
	spinner spinner.Model
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, task func(ctx context.Context) error) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{label: label, task: task, ctx: ctx, spinner: s}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.run(), m.spinner.Tick)
}

func (m loaderModel) run() tea.Cmd {
	task, ctx := m.task, m.ctx
	return func() tea.Msg {
		return taskDoneMsg{err: task(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunWithSpinner shows a spinner next to label while task runs. It renders
// inline (no alt screen) and returns the task's error.
func RunWithSpinner(ctx context.Context, label string, task func(ctx context.Context) error) error {
	p := tea.NewProgram(newLoaderModel(ctx, label, task), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		return err
	}
	return result.(loaderModel).err
}
