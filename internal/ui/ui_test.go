package ui

import (
	"strings"
	"testing"

	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

func TestStateOf(t *testing.T) {
	tests := []struct {
		st   status.ConnectionState
		want DotState
	}{
		{status.ConnectionState{Connected: true, DaemonRunning: true}, StateConnected},
		{status.ConnectionState{}, StateDown},
		{status.ConnectionState{DaemonRunning: true, Cause: status.CauseNeedsLogin}, StateNeedsAuth},
		{status.ConnectionState{DaemonRunning: true, Cause: status.CauseKeyExpired}, StateNeedsAuth},
		{status.ConnectionState{DaemonRunning: true, Cause: status.CauseDisconnected}, StateIdle},
	}
	for _, tt := range tests {
		if got := StateOf(tt.st); got != tt.want {
			t.Errorf("StateOf(%+v) = %v, want %v", tt.st, got, tt.want)
		}
	}
}

func TestDot(t *testing.T) {
	for _, s := range []DotState{StateConnected, StateDown, StateNeedsAuth, StateIdle} {
		if !strings.Contains(Dot(s), "●") {
			t.Errorf("Dot(%v) missing glyph", s)
		}
	}
}

func TestSection(t *testing.T) {
	out := Section("Tailscale", "hello", 40)
	if !strings.Contains(out, "Tailscale") || !strings.Contains(out, "hello") {
		t.Errorf("Section = %q, missing title or content", out)
	}
	if !strings.Contains(out, "╭") {
		t.Error("Section missing rounded border")
	}
}

func TestRow(t *testing.T) {
	got := Row("IP", "100.64.0.1", "HOSTNAME", "fpp", 60)
	if !strings.HasPrefix(got, "IP:") || !strings.Contains(got, "HOSTNAME: fpp") {
		t.Errorf("Row = %q", got)
	}
	if got := Row("K", "v", "", "", 60); got != "K:             v" {
		t.Errorf("single Row = %q", got)
	}
}

func TestStateLines(t *testing.T) {
	ip, host, url := "100.64.0.1", "fpp", "https://login.tailscale.com/a/x"

	lines := StateLines(status.ConnectionState{Connected: true, DaemonRunning: true, IP: &ip, Hostname: &host, Online: true, Status: "Connected"}, 60)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, ip) || !strings.Contains(joined, host) {
		t.Errorf("connected lines missing ip/host: %q", joined)
	}

	lines = StateLines(status.ConnectionState{DaemonRunning: true, AuthURL: &url, Status: "Authentication required"}, 60)
	joined = strings.Join(lines, "\n")
	if !strings.Contains(joined, url) {
		t.Errorf("auth lines missing url: %q", joined)
	}
	if strings.Contains(joined, "IP:") {
		t.Errorf("auth lines should not show IP: %q", joined)
	}
}
