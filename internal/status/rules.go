package status

import (
	"context"

	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// Signals are the daemon observations a decision is made from.
type Signals struct {
	DaemonRunning bool
	Text          string
	TextSignal    TextSignal
	JSON          *tailscale.Status
}

// Recovery runs the login flows and returns the auth URL they print, if any.
type Recovery interface {
	RecoverExpired(ctx context.Context) *string
	FreshLogin(ctx context.Context) *string
}

// Rule is one row of the decision table.
type Rule struct {
	Cause   Cause
	Match   func(Signals) bool
	Resolve func(ctx context.Context, s Signals, rec Recovery) ConnectionState
}

// DefaultRules is the decision table, highest precedence first. The last row
// always matches.
var DefaultRules = []Rule{
	{
		Cause: CauseDaemonDown,
		Match: func(s Signals) bool { return !s.DaemonRunning },
		Resolve: func(context.Context, Signals, Recovery) ConnectionState {
			return ConnectionState{Status: MsgDaemonDown}
		},
	},
	{
		Cause: CauseKeyExpired,
		Match: func(s Signals) bool { return s.JSON.KeyExpired() },
		Resolve: func(ctx context.Context, _ Signals, rec Recovery) ConnectionState {
			return ConnectionState{
				DaemonRunning: true,
				Status:        MsgRevoked,
				AuthURL:       rec.RecoverExpired(ctx),
			}
		},
	},
	{
		Cause: CauseConnected,
		Match: func(s Signals) bool { return s.JSON.PrimaryIP() != "" && s.JSON.Online() },
		Resolve: func(_ context.Context, s Signals, _ Recovery) ConnectionState {
			ip := s.JSON.PrimaryIP()
			host := s.JSON.HostName()
			if host == "" {
				host = fallbackHostname
			}
			return ConnectionState{
				Connected:     true,
				DaemonRunning: true,
				IP:            &ip,
				Hostname:      &host,
				Online:        true,
				Status:        MsgConnected,
			}
		},
	},
	{
		Cause: CauseNeedsLogin,
		Match: func(s Signals) bool { return s.TextSignal.NeedsLogin() },
		Resolve: func(ctx context.Context, _ Signals, rec Recovery) ConnectionState {
			return ConnectionState{
				DaemonRunning: true,
				Status:        MsgAuthRequired,
				AuthURL:       rec.FreshLogin(ctx),
			}
		},
	},
	{
		Cause: CauseDisconnected,
		Match: func(Signals) bool { return true },
		Resolve: func(context.Context, Signals, Recovery) ConnectionState {
			return ConnectionState{DaemonRunning: true, Status: MsgDisconnected}
		},
	},
}

// Select returns the first rule matching s, or nil.
func Select(rules []Rule, s Signals) *Rule {
	for i := range rules {
		if rules[i].Match(s) {
			return &rules[i]
		}
	}
	return nil
}

// Decide resolves s against rules. The result's Cause is the selected row.
func Decide(ctx context.Context, rules []Rule, s Signals, rec Recovery) ConnectionState {
	r := Select(rules, s)
	if r == nil {
		return ConnectionState{DaemonRunning: s.DaemonRunning, Status: MsgDisconnected, Cause: CauseDisconnected}
	}
	st := r.Resolve(ctx, s, rec)
	st.Cause = r.Cause
	return st
}
