package tailscale

import (
	"encoding/json"
	"fmt"
)

// Status is the subset of `tailscale status --json` the plugin reads.
// Unknown fields are ignored.
type Status struct {
	Version      string      `json:"Version,omitempty"`
	BackendState string      `json:"BackendState"`
	AuthURL      string      `json:"AuthURL,omitempty"`
	Self         *PeerStatus `json:"Self,omitempty"`
	Health       []string    `json:"Health,omitempty"`
}

// PeerStatus describes this node as reported by the daemon.
type PeerStatus struct {
	HostName     string   `json:"HostName"`
	DNSName      string   `json:"DNSName,omitempty"`
	OS           string   `json:"OS,omitempty"`
	TailscaleIPs []string `json:"TailscaleIPs"`
	Online       bool     `json:"Online"`
	KeyExpired   bool     `json:"KeyExpired,omitempty"`
	// KeyExpiry is kept as text; older daemons emit formats time.Time rejects.
	KeyExpiry string `json:"KeyExpiry,omitempty"`
}

// ParseStatus decodes status JSON. A document without a Self object is
// accepted and yields a Status with nil Self.
func ParseStatus(data []byte) (*Status, error) {
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode tailscale status: %w", err)
	}
	return &st, nil
}

// PrimaryIP returns the first Tailscale address of the node, or "".
func (s *Status) PrimaryIP() string {
	if s == nil || s.Self == nil || len(s.Self.TailscaleIPs) == 0 {
		return ""
	}
	return s.Self.TailscaleIPs[0]
}

// KeyExpired reports whether the daemon flagged the node key as expired.
func (s *Status) KeyExpired() bool {
	return s != nil && s.Self != nil && s.Self.KeyExpired
}

// Online reports the node's Online flag.
func (s *Status) Online() bool {
	return s != nil && s.Self != nil && s.Self.Online
}

// HostName returns Self.HostName, or "".
func (s *Status) HostName() string {
	if s == nil || s.Self == nil {
		return ""
	}
	return s.Self.HostName
}
