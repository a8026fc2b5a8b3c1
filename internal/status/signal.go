package status

import "strings"

// TextSignal classifies the plain-text `tailscale status` output.
type TextSignal int

const (
	SignalUnknown TextSignal = iota
	SignalLoggedOut
	SignalNeedsLogin
	SignalRunUp
	SignalNotLoggedIn
	SignalExpired
	SignalRevoked
	SignalEmpty
)

// textPatterns is checked in order; matching is case sensitive.
var textPatterns = []struct {
	signal  TextSignal
	pattern string
}{
	{SignalLoggedOut, "Logged out"},
	{SignalNeedsLogin, "NeedsLogin"},
	{SignalRunUp, "run `tailscale up`"},
	{SignalNotLoggedIn, "not logged in"},
	{SignalExpired, "expired"},
	{SignalRevoked, "revoked"},
}

// ClassifyText returns the first signal whose pattern occurs in text.
func ClassifyText(text string) TextSignal {
	for _, p := range textPatterns {
		if strings.Contains(text, p.pattern) {
			return p.signal
		}
	}
	if strings.TrimSpace(text) == "" {
		return SignalEmpty
	}
	return SignalUnknown
}

// NeedsLogin reports whether the signal means the node must authenticate.
func (s TextSignal) NeedsLogin() bool {
	return s != SignalUnknown
}

func (s TextSignal) String() string {
	switch s {
	case SignalLoggedOut:
		return "logged_out"
	case SignalNeedsLogin:
		return "needs_login"
	case SignalRunUp:
		return "run_up"
	case SignalNotLoggedIn:
		return "not_logged_in"
	case SignalExpired:
		return "expired"
	case SignalRevoked:
		return "revoked"
	case SignalEmpty:
		return "empty"
	}
	return "unknown"
}
