package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hopboxdev/fpp-tailscale/internal/api"
	"github.com/hopboxdev/fpp-tailscale/internal/apiclient"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

// WatchCmd polls a running server and renders a live dashboard.
type WatchCmd struct {
	Addr     string        `help:"Server address; defaults to the settings listen address."`
	Interval time.Duration `help:"Refresh interval." default:"5s"`
}

func (c *WatchCmd) Run(ctx context.Context, g *CLI) error {
	addr := c.Addr
	if addr == "" {
		s, err := resolveSettings(g)
		if err != nil {
			return err
		}
		addr = s.Listen
	}
	if c.Interval < time.Second {
		return fmt.Errorf("--interval must be at least 1s")
	}
	m := newWatchModel(ctx, apiclient.New(addr), c.Interval)
	_, err := tea.NewProgram(m).Run()
	return err
}

// watchAPI is the part of apiclient.Client the dashboard uses.
type watchAPI interface {
	Status(ctx context.Context) (status.ConnectionState, error)
	Logs(ctx context.Context) (string, error)
	Connect(ctx context.Context) (api.ConnectResponse, error)
	Disconnect(ctx context.Context) (api.MessageResponse, error)
}
