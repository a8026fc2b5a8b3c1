package main

import (
	"strings"
	"time"

	"github.com/hopboxdev/fpp-tailscale/internal/ui"
)

const watchLogLines = 10

// renderWatch renders the dashboard for m.
func renderWatch(m watchModel) string {
	width := m.width
	if width > ui.MaxWidth {
		width = ui.MaxWidth
	}
	contentWidth := max(width-4, 40)

	var sections []string
	if m.updated.IsZero() && m.err == nil {
		sections = append(sections, ui.Section("Tailscale", ui.Muted("loading..."), width))
	} else {
		lines := ui.StateLines(m.state, contentWidth)
		if !m.updated.IsZero() {
			lines = append(lines, ui.Muted("updated "+m.updated.Format(time.TimeOnly)))
		}
		if m.err != nil {
			lines = append(lines, ui.Warn(m.err.Error()))
		}
		sections = append(sections, ui.Section("Tailscale", strings.Join(lines, "\n"), width))
	}

	if m.showLogs {
		sections = append(sections, ui.Section("Log", lastLines(m.logs, watchLogLines), width))
	}
	if m.notice != "" {
		sections = append(sections, m.notice)
	}
	sections = append(sections, ui.Muted("c connect · d disconnect · l logs · r refresh · q quit"))
	return strings.Join(sections, "\n")
}

// lastLines returns the final n lines of s.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
