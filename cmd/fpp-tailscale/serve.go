package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/hopboxdev/fpp-tailscale/internal/api"
	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
	"github.com/hopboxdev/fpp-tailscale/internal/metrics"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
)

const shutdownDrain = 10 * time.Second

// ServeCmd runs the HTTP API the plugin page polls.
type ServeCmd struct {
	Listen        string `help:"Listen address; overrides settings."`
	NoAutoConnect bool   `help:"Skip the auto-connect check at startup."`
	NoLogFile     bool   `help:"Log to stderr only, not to the plugin log file."`
}

func (c *ServeCmd) Run(ctx context.Context, g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	if !c.NoLogFile {
		if f, err := os.OpenFile(a.settings.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err != nil {
			a.logger.Warn("plugin log file unavailable, logging to stderr only", "path", a.settings.LogFile, "err", err)
		} else {
			defer func() { _ = f.Close() }()
			a.logger.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}

	addr := a.settings.Listen
	if c.Listen != "" {
		addr = c.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return a.serve(ctx, ln, !c.NoAutoConnect)
}

// serve wires metrics into the app and serves the API on ln. Auto-connect
// runs in the background once ln is bound, so a login prompt never holds
// up the API that reports it.
func (a *app) serve(ctx context.Context, ln net.Listener, autoConnect bool) error {
	reg := metrics.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	if a.runner != nil {
		a.runner.Observe = func(cmd string, res execrun.Result, d time.Duration) {
			rec.ObserveCommand(execrun.Program(cmd), res.ExitCode, d)
		}
	}
	a.status.OnState = func(st status.ConnectionState) {
		rec.ObserveState(string(st.Cause), st.Connected)
	}

	srv := api.NewServer(api.Deps{
		Status:     a.status,
		Connection: a.conn,
		Store:      a.store,
		ConfigFile: a.settings.ConfigFile,
		LogFile:    a.settings.LogFile,
		LogLines:   a.settings.LogLines,
		Hostname:   plugincfg.SystemHostname,
		Metrics:    rec,
		Registry:   reg,
		Logger:     a.logger,
	})

	if autoConnect {
		go func() {
			if attempted, res := a.conn.AutoConnect(ctx, a.status); attempted {
				a.logger.Info("auto-connect", "success", res.Success, "auth_url", res.AuthURL != nil)
			}
		}()
	}
	return api.Serve(ctx, ln, srv, shutdownDrain, a.logger)
}
