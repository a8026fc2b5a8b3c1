// Package apiclient calls a running fpp-tailscale API server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hopboxdev/fpp-tailscale/internal/api"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// Client talks to the /api endpoint at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for addr, which may be "host:port" or a full URL.
func New(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	// connect can hold a request for the server's connect bound.
	return &Client{BaseURL: strings.TrimRight(base, "/"), HTTP: &http.Client{Timeout: 60 * time.Second}}
}

// call performs one action and decodes the response into out. A response
// with success=false is returned as an error carrying its message, after
// out has been filled.
func (c *Client) call(ctx context.Context, action string, body any, out any) error {
	method := http.MethodGet
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		method = http.MethodPost
		rd = bytes.NewReader(data)
	}

	u := c.BaseURL + "/api?action=" + url.QueryEscape(action)
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("API call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env api.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("parse API response (HTTP %d): %w", resp.StatusCode, err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse API response: %w", err)
		}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("%s: %s", action, msg)
	}
	return nil
}

// Status fetches the current connection state.
func (c *Client) Status(ctx context.Context) (status.ConnectionState, error) {
	var out api.StatusResponse
	err := c.call(ctx, "getStatus", nil, &out)
	return out.Status, err
}

// Config fetches the stored plugin config.
func (c *Client) Config(ctx context.Context) (plugincfg.Config, error) {
	var out api.ConfigResponse
	err := c.call(ctx, "getConfig", nil, &out)
	return out.Config, err
}

// Connect asks the server to bring the link up.
func (c *Client) Connect(ctx context.Context) (api.ConnectResponse, error) {
	var out api.ConnectResponse
	err := c.call(ctx, "connect", struct{}{}, &out)
	return out, err
}

// Disconnect asks the server to bring the link down.
func (c *Client) Disconnect(ctx context.Context) (api.MessageResponse, error) {
	var out api.MessageResponse
	err := c.call(ctx, "disconnect", struct{}{}, &out)
	return out, err
}

// Logs fetches the log tail.
func (c *Client) Logs(ctx context.Context) (string, error) {
	var out api.LogsResponse
	err := c.call(ctx, "getLogs", nil, &out)
	return out.Logs, err
}
