package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// watchModel is the Bubble Tea model for the watch dashboard.
type watchModel struct {
	ctx      context.Context
	client   watchAPI
	interval time.Duration

	state    status.ConnectionState
	logs     string
	err      error
	updated  time.Time
	notice   string
	busy     bool
	showLogs bool
	width    int
	quitting bool
}

func newWatchModel(ctx context.Context, client watchAPI, interval time.Duration) watchModel {
	return watchModel{ctx: ctx, client: client, interval: interval, width: 80}
}

// Messages.
type watchTickMsg time.Time

type watchRefreshMsg struct {
	state status.ConnectionState
	logs  string
	err   error
	at    time.Time
}

type watchActionMsg struct {
	notice string
	err    error
}

func (m watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.client.Status(m.ctx)
		msg := watchRefreshMsg{state: st, err: err, at: time.Now()}
		if err == nil && m.showLogs {
			msg.logs, msg.err = m.client.Logs(m.ctx)
		}
		return msg
	}
}

func (m watchModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.client.Connect(m.ctx)
		if err != nil {
			return watchActionMsg{err: err}
		}
		if res.AuthURL != nil {
			return watchActionMsg{notice: "Login required: " + *res.AuthURL}
		}
		return watchActionMsg{notice: "Connect requested"}
	}
}

func (m watchModel) disconnectCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.client.Disconnect(m.ctx); err != nil {
			return watchActionMsg{err: err}
		}
		return watchActionMsg{notice: "Disconnected"}
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		case "l":
			m.showLogs = !m.showLogs
			return m, m.fetchCmd()
		case "c":
			if m.busy {
				return m, nil
			}
			m.busy, m.notice = true, "Connecting..."
			return m, m.connectCmd()
		case "d":
			if m.busy {
				return m, nil
			}
			m.busy, m.notice = true, "Disconnecting..."
			return m, m.disconnectCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case watchTickMsg:
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case watchRefreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.logs = msg.logs
			m.updated = msg.at
		}
		return m, nil

	case watchActionMsg:
		m.busy = false
		m.notice = msg.notice
		if msg.err != nil {
			m.notice = "Error: " + msg.err.Error()
		}
		return m, m.fetchCmd()
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}
	return renderWatch(m)
}
