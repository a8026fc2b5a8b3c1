// Package tailscale drives the tailscale CLI through an execrun.Runner.
package tailscale

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
)

// Daemon is the set of daemon operations the plugin needs.
type Daemon interface {
	// ProbeDaemon reports whether the daemon process is alive.
	ProbeDaemon(ctx context.Context) bool
	StatusText(ctx context.Context) execrun.Result
	// StatusJSON returns nil when the output does not decode, whatever the
	// exit status.
	StatusJSON(ctx context.Context) *Status
	Up(ctx context.Context, opts UpOptions) execrun.Result
	Logout(ctx context.Context) execrun.Result
	Down(ctx context.Context) execrun.Result
}

// ExitTimedOut is the status timeout(1) exits with when the bound expires.
const ExitTimedOut = 124

// UpOptions selects the flags passed to `tailscale up`. Every up call is
// wrapped in timeout(1); an interactive login otherwise blocks until the
// user completes it in a browser.
type UpOptions struct {
	Hostname          string
	AcceptRoutes      bool
	AdvertiseExitNode bool
	// Bounded uses the short login bound and appends `|| true`, so the call
	// always reports success and only its output matters. Otherwise the
	// connect bound applies and the exit status is kept.
	Bounded bool
}

// Options configures command construction.
type Options struct {
	Binary        string        // default "tailscale"
	DaemonProcess string        // default "tailscaled"
	UseSudo       bool          // prefix daemon commands with sudo
	LoginTimeout  time.Duration // bound for Bounded up calls; default 3s
	// ConnectTimeout bounds the other up calls; default 30s.
	ConnectTimeout time.Duration
}

// CLI implements Daemon on top of the tailscale command line tool.
type CLI struct {
	run    execrun.Runner
	opts   Options
	logger *log.Logger
}

// NewCLI returns a CLI that runs commands with runner.
func NewCLI(runner execrun.Runner, opts Options, logger *log.Logger) *CLI {
	if opts.Binary == "" {
		opts.Binary = "tailscale"
	}
	if opts.DaemonProcess == "" {
		opts.DaemonProcess = "tailscaled"
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = 3 * time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CLI{run: runner, opts: opts, logger: logger}
}

func (c *CLI) command(args ...string) string {
	parts := make([]string, 0, len(args)+2)
	if c.opts.UseSudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, c.opts.Binary)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

// ProbeDaemon runs `pgrep -x <process>`. It never uses sudo.
func (c *CLI) ProbeDaemon(ctx context.Context) bool {
	res := c.run.Run(ctx, "pgrep -x "+Quote(c.opts.DaemonProcess))
	return res.ExitCode == 0
}

func (c *CLI) StatusText(ctx context.Context) execrun.Result {
	return c.run.Run(ctx, c.command("status"))
}

func (c *CLI) StatusJSON(ctx context.Context) *Status {
	res := c.run.Run(ctx, c.command("status", "--json"))
	st, err := ParseStatus([]byte(res.Output))
	if err != nil {
		c.logger.Debug("discarding status json", "exit", res.ExitCode, "err", err)
		return nil
	}
	if res.ExitCode != 0 {
		c.logger.Debug("status --json exited non-zero", "exit", res.ExitCode)
	}
	return st
}

func (c *CLI) Up(ctx context.Context, opts UpOptions) execrun.Result {
	return c.run.Run(ctx, c.UpCommand(opts))
}

// UpCommand renders the `tailscale up` command line for opts.
func (c *CLI) UpCommand(opts UpOptions) string {
	args := []string{"up"}
	if opts.AcceptRoutes {
		args = append(args, "--accept-routes")
	}
	if opts.AdvertiseExitNode {
		args = append(args, "--advertise-exit-node")
	}
	if opts.Hostname != "" {
		args = append(args, "--hostname="+Quote(opts.Hostname))
	}
	cmd := c.command(args...)
	if opts.Bounded {
		return fmt.Sprintf("timeout %d %s 2>&1 || true", boundSeconds(c.opts.LoginTimeout), cmd)
	}
	return fmt.Sprintf("timeout %d %s", boundSeconds(c.opts.ConnectTimeout), cmd)
}

func (c *CLI) Logout(ctx context.Context) execrun.Result {
	return c.run.Run(ctx, c.command("logout"))
}

func (c *CLI) Down(ctx context.Context) execrun.Result {
	return c.run.Run(ctx, c.command("down"))
}

// boundSeconds rounds d up to whole seconds, minimum 1, for timeout(1).
func boundSeconds(d time.Duration) int {
	n := int(math.Ceil(d.Seconds()))
	if n < 1 {
		return 1
	}
	return n
}

// Quote returns s as a single shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
