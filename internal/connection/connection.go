// Package connection brings the tailscale link up and down using the
// persisted plugin settings.
package connection

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/hopboxdev/fpp-tailscale/internal/authflow"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// Result is the outcome of a control action.
type Result struct {
	Success bool
	Message string
	AuthURL *string
}

const msgUpTimedOut = "tailscale up timed out"

// Controller runs connect, disconnect and logout.
type Controller struct {
	daemon tailscale.Daemon
	store  plugincfg.Store
	logger *log.Logger
}

// New returns a Controller.
func New(d tailscale.Daemon, store plugincfg.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{daemon: d, store: store, logger: logger}
}

// Connect runs `tailscale up` with flags from the stored config, bounded by
// the CLI's connect timeout. It succeeds when the command exits 0 or prints a
// login URL; an interactive login is left running in the daemon and reported
// through AuthURL.
func (c *Controller) Connect(ctx context.Context) Result {
	cfg, err := c.store.Load()
	if err != nil {
		return Result{Message: "load config: " + err.Error()}
	}
	res := c.daemon.Up(ctx, tailscale.UpOptions{
		Hostname:          cfg.Hostname,
		AcceptRoutes:      cfg.AcceptRoutes,
		AdvertiseExitNode: cfg.AdvertiseExit,
	})
	url := authflow.ExtractAuthURL(res.Output)
	out := Result{
		Success: res.OK() || url != nil,
		Message: res.Output,
		AuthURL: url,
	}
	if res.ExitCode == tailscale.ExitTimedOut && url == nil && out.Message == "" {
		out.Message = msgUpTimedOut
	}
	c.logger.Info("connect", "exit", res.ExitCode, "auth_url", url != nil)
	return out
}

// Disconnect runs `tailscale down`.
func (c *Controller) Disconnect(ctx context.Context) Result {
	res := c.daemon.Down(ctx)
	c.logger.Info("disconnect", "exit", res.ExitCode)
	return Result{Success: res.OK(), Message: res.Output}
}

// Logout runs `tailscale logout`.
func (c *Controller) Logout(ctx context.Context) Result {
	res := c.daemon.Logout(ctx)
	c.logger.Info("logout", "exit", res.ExitCode)
	return Result{Success: res.OK(), Message: res.Output}
}

// AutoConnect connects when auto_connect is enabled and the daemon is up but
// not connected. It reports whether a connect was attempted.
func (c *Controller) AutoConnect(ctx context.Context, in *status.Interpreter) (bool, Result) {
	cfg, err := c.store.Load()
	if err != nil {
		c.logger.Warn("auto-connect skipped", "err", err)
		return false, Result{}
	}
	if !cfg.AutoConnect {
		return false, Result{}
	}
	sig := in.Gather(ctx)
	if !sig.DaemonRunning {
		c.logger.Warn("auto-connect skipped, daemon not running")
		return false, Result{}
	}
	if sig.JSON.PrimaryIP() != "" && sig.JSON.Online() {
		c.logger.Debug("auto-connect skipped, already connected")
		return false, Result{}
	}
	res := c.Connect(ctx)
	if !res.Success {
		c.logger.Warn("auto-connect failed", "output", res.Message)
	}
	return true, res
}
