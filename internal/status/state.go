// Package status infers the plugin's connection state from the tailscale
// daemon.
package status

// Human readable status messages shown by the plugin page.
const (
	MsgDaemonDown    = "Tailscale daemon not running"
	MsgRevoked       = "Device revoked - authentication required"
	MsgConnected     = "Connected"
	MsgAuthRequired  = "Authentication required"
	MsgDisconnected  = "Disconnected"
	fallbackHostname = "N/A"
)

// Cause names the decision row that produced a ConnectionState.
type Cause string

const (
	CauseDaemonDown   Cause = "daemon_down"
	CauseKeyExpired   Cause = "key_expired"
	CauseConnected    Cause = "connected"
	CauseNeedsLogin   Cause = "needs_login"
	CauseDisconnected Cause = "disconnected"
)

// ConnectionState is the plugin's view of the node, recomputed per query.
type ConnectionState struct {
	Connected     bool    `json:"connected" yaml:"connected"`
	DaemonRunning bool    `json:"daemon_running" yaml:"daemon_running"`
	IP            *string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Hostname      *string `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Status        string  `json:"status" yaml:"status"`
	Online        bool    `json:"online,omitempty" yaml:"online,omitempty"`
	AuthURL       *string `json:"auth_url" yaml:"auth_url"`
	Cause         Cause   `json:"cause" yaml:"cause"`
}

// NeedsAuth reports whether the user has to complete a login.
func (s ConnectionState) NeedsAuth() bool {
	return s.Cause == CauseKeyExpired || s.Cause == CauseNeedsLogin
}
