package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/tui"
	"github.com/hopboxdev/fpp-tailscale/internal/ui"
)

// ConnectCmd runs `tailscale up` with the stored plugin flags.
type ConnectCmd struct{}

func (c *ConnectCmd) Run(ctx context.Context, g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}

	var res connection.Result
	steps := []tui.Step{
		{Title: "Starting tailscale", Run: func(ctx context.Context, report func(string)) error {
			res = a.conn.Connect(ctx)
			if !res.Success {
				return errors.New(res.Message)
			}
			if res.AuthURL != nil {
				report("Login required")
			} else {
				report("Tailscale is up")
			}
			return nil
		}},
		{Title: "Checking connection", Run: func(ctx context.Context, report func(string)) error {
			if res.AuthURL != nil {
				report("Waiting for login")
				return nil
			}
			sig := a.status.Gather(ctx)
			if ip := sig.JSON.PrimaryIP(); ip != "" && sig.JSON.Online() {
				report("Connected as " + ip)
				return nil
			}
			report("Not online yet")
			return nil
		}},
	}
	if err := tui.RunSteps(ctx, os.Stdout, steps); err != nil {
		return err
	}
	if res.AuthURL != nil {
		fmt.Println()
		fmt.Println("Open this URL to authenticate:")
		fmt.Println("  " + ui.Link(*res.AuthURL))
	}
	return nil
}

// DisconnectCmd runs `tailscale down`.
type DisconnectCmd struct{}

func (c *DisconnectCmd) Run(ctx context.Context, g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	return report("Disconnected", "Disconnect failed", a.conn.Disconnect(ctx))
}

// LogoutCmd runs `tailscale logout`.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	return report("Logged out", "Logout failed", a.conn.Logout(ctx))
}

func report(ok, failed string, res connection.Result) error {
	if !res.Success {
		fmt.Fprintln(os.Stderr, ui.StepFail(failed))
		if res.Message != "" {
			fmt.Fprintln(os.Stderr, ui.Muted(res.Message))
		}
		return errors.New(strings.ToLower(failed))
	}
	fmt.Println(ui.StepOK(ok))
	return nil
}
