package api

import (
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// Envelope is the minimal response shape; every response has success.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StatusResponse answers getStatus.
type StatusResponse struct {
	Success bool                   `json:"success"`
	Status  status.ConnectionState `json:"status"`
}

// ConfigResponse answers getConfig.
type ConfigResponse struct {
	Success bool             `json:"success"`
	Config  plugincfg.Config `json:"config"`
}

// MessageResponse answers saveConfig, disconnect and logout.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConnectResponse answers connect. AuthURL is null when no login is
// pending.
type ConnectResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	AuthURL *string `json:"auth_url"`
}

// LogsResponse answers getLogs.
type LogsResponse struct {
	Success bool   `json:"success"`
	Logs    string `json:"logs"`
}

// SystemInfoResponse answers getSystemInfo.
type SystemInfoResponse struct {
	Success  bool   `json:"success"`
	Hostname string `json:"hostname"`
}
