// Package authflow runs tailscale login flows and extracts the one-time
// authentication URL they print.
package authflow

import (
	"context"
	"io"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// LoginServer is the coordination server whose login links are recognized.
const LoginServer = "login.tailscale.com"

var authURLPattern = regexp.MustCompile(`https://` + regexp.QuoteMeta(LoginServer) + `/[^\s'"<>]+`)

// ExtractAuthURL returns the first login URL in output, or nil.
func ExtractAuthURL(output string) *string {
	m := authURLPattern.FindString(output)
	if m == "" {
		return nil
	}
	return &m
}

// Controller implements status.Recovery.
type Controller struct {
	daemon   tailscale.Daemon
	store    plugincfg.Store
	hostname plugincfg.HostnameFunc
	logger   *log.Logger
}

// New returns a Controller that reads the login hostname from store.
func New(d tailscale.Daemon, store plugincfg.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{daemon: d, store: store, hostname: plugincfg.SystemHostname, logger: logger}
}

// WithHostname replaces the system hostname resolver used when the store
// cannot be read.
func (c *Controller) WithHostname(fn plugincfg.HostnameFunc) *Controller {
	c.hostname = fn
	return c
}

// RecoverExpired logs out the stale node key and starts a new login.
func (c *Controller) RecoverExpired(ctx context.Context) *string {
	c.logger.Info("node key expired, logging out before re-login")
	if res := c.daemon.Logout(ctx); !res.OK() {
		c.logger.Warn("logout failed", "exit", res.ExitCode, "output", res.Output)
	}
	return c.login(ctx)
}

// FreshLogin starts a login without logging out first.
func (c *Controller) FreshLogin(ctx context.Context) *string {
	return c.login(ctx)
}

func (c *Controller) login(ctx context.Context) *string {
	res := c.daemon.Up(ctx, tailscale.UpOptions{Hostname: c.loginHostname(), Bounded: true})
	url := ExtractAuthURL(res.Output)
	if url == nil {
		c.logger.Debug("login produced no auth url", "exit", res.ExitCode)
	}
	return url
}

func (c *Controller) loginHostname() string {
	cfg, err := c.store.Load()
	if err == nil && cfg.Hostname != "" {
		return cfg.Hostname
	}
	if err != nil {
		c.logger.Warn("config unreadable, using system hostname", "err", err)
	}
	if c.hostname != nil {
		if h, herr := c.hostname(); herr == nil && h != "" {
			return h
		}
	}
	return plugincfg.PlaceholderHostname
}
