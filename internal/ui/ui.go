// Package ui renders terminal output for the fpp-tailscale CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// MaxWidth is the maximum width for boxed output.
const MaxWidth = 80

// Colors.
var (
	Green  = lipgloss.Color("2")
	Red    = lipgloss.Color("1")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Subtle = lipgloss.Color("8")
)

// DotState is the color of a status dot.
type DotState int

const (
	StateConnected  DotState = iota // green
	StateDown                       // red
	StateNeedsAuth                  // yellow
	StateIdle                       // grey
)

var sectionStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1).
	MarginBottom(1)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	linkStyle  = lipgloss.NewStyle().Foreground(Blue).Underline(true)
	subtle     = lipgloss.NewStyle().Foreground(Subtle)
)

// StateOf picks the dot for a connection state.
func StateOf(st status.ConnectionState) DotState {
	switch {
	case st.Connected:
		return StateConnected
	case !st.DaemonRunning:
		return StateDown
	case st.NeedsAuth():
		return StateNeedsAuth
	}
	return StateIdle
}

// Dot returns a colored ● for state.
func Dot(state DotState) string {
	c := Subtle
	switch state {
	case StateConnected:
		c = Green
	case StateDown:
		c = Red
	case StateNeedsAuth:
		c = Yellow
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

// Section renders content in a rounded box under a bold title.
func Section(title, content string, width int) string {
	if width > MaxWidth {
		width = MaxWidth
	}
	contentWidth := max(width-4, 40)
	return sectionStyle.Width(contentWidth).Render(
		titleStyle.Render(title) + "\n" + content,
	)
}

// Link styles a URL.
func Link(url string) string { return linkStyle.Render(url) }

// Muted renders s in the subtle color.
func Muted(s string) string { return subtle.Render(s) }

func StepOK(msg string) string {
	return lipgloss.NewStyle().Foreground(Green).Render("✔") + " " + msg
}

func StepFail(msg string) string {
	return lipgloss.NewStyle().Foreground(Red).Render("✘") + " " + msg
}

// Warn returns a yellow warning line; callers write it to stderr.
func Warn(msg string) string {
	return lipgloss.NewStyle().Foreground(Yellow).Render("⚠") + " " + msg
}

// Row renders a key/value pair, optionally followed by a second pair
// starting at half the width.
func Row(k1, v1, k2, v2 string, width int) string {
	left := fmt.Sprintf("%-14s %s", k1+":", v1)
	if k2 == "" {
		return left
	}
	gap := width/2 - lipgloss.Width(left)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + k2 + ": " + v2
}

// StateLines renders the rows describing a connection state.
func StateLines(st status.ConnectionState, width int) []string {
	lines := []string{
		Row("STATUS", Dot(StateOf(st))+" "+st.Status, "CAUSE", string(st.Cause), width),
	}
	daemon := "running"
	if !st.DaemonRunning {
		daemon = "stopped"
	}
	lines = append(lines, Row("DAEMON", daemon, "ONLINE", yesNo(st.Online), width))
	if st.IP != nil {
		host := "-"
		if st.Hostname != nil {
			host = *st.Hostname
		}
		lines = append(lines, Row("IP", *st.IP, "HOSTNAME", host, width))
	}
	if st.AuthURL != nil {
		lines = append(lines, Row("LOGIN", Link(*st.AuthURL), "", "", width))
	}
	return lines
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
