// Package tui runs short multi-step CLI operations with a spinner.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hopboxdev/fpp-tailscale/internal/ui"
)

// Step is one unit of work. Run may call report to replace the text shown
// next to the spinner; the last reported text is kept on the done line.
type Step struct {
	Title string
	Run   func(ctx context.Context, report func(string)) error
}

type stepDoneMsg struct {
	index int
	err   error
}

type reportMsg string

type stepModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	steps   []Step
	current int
	done    []string
	label   string
	err     error
	spinner spinner.Model
	send    func(tea.Msg)
}

func (m *stepModel) Init() tea.Cmd {
	m.label = m.steps[0].Title
	return tea.Batch(m.spinner.Tick, m.run(0))
}

func (m *stepModel) run(idx int) tea.Cmd {
	step := m.steps[idx]
	return func() tea.Msg {
		report := func(s string) {
			if m.send != nil {
				m.send(reportMsg(s))
			}
		}
		return stepDoneMsg{index: idx, err: step.Run(m.ctx, report)}
	}
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
	case reportMsg:
		m.label = string(msg)
	case stepDoneMsg:
		if msg.index != m.current {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.done = append(m.done, m.label)
		m.current++
		if m.current >= len(m.steps) {
			return m, tea.Quit
		}
		m.label = m.steps[m.current].Title
		return m, m.run(m.current)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *stepModel) View() string {
	var b strings.Builder
	for _, d := range m.done {
		b.WriteString(ui.StepOK(d) + "\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(ui.StepFail(m.label) + "\n")
	case m.current < len(m.steps):
		b.WriteString(m.spinner.View() + " " + m.label + "\n")
	}
	return b.String()
}

// RunSteps runs steps in order, stopping at the first error. On a terminal
// each step shows a spinner; otherwise one line per step is written to out.
func RunSteps(ctx context.Context, out io.Writer, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return runPlain(ctx, out, steps)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.Yellow)

	m := &stepModel{ctx: ctx, cancel: cancel, steps: steps, spinner: s}
	p := tea.NewProgram(m, tea.WithOutput(out))
	m.send = p.Send

	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	if r, ok := result.(*stepModel); ok && r.err != nil {
		return r.err
	}
	return nil
}

func runPlain(ctx context.Context, out io.Writer, steps []Step) error {
	for _, step := range steps {
		label := step.Title
		err := step.Run(ctx, func(s string) { label = s })
		if err != nil {
			_, _ = fmt.Fprintln(out, ui.StepFail(label))
			return err
		}
		_, _ = fmt.Fprintln(out, ui.StepOK(label))
	}
	return nil
}
