package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/ui"
)

// ConfigCmd manages the plugin config file.
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective config."`
	Set  ConfigSetCmd  `cmd:"" help:"Set config keys (key=value)."`
	Edit ConfigEditCmd `cmd:"" help:"Edit the config interactively."`
}

// ConfigShowCmd prints the effective config.
type ConfigShowCmd struct {
	Output string `short:"o" help:"Output format." enum:"text,json,yaml" default:"text"`
}

func (c *ConfigShowCmd) Run(g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	if c.Output != "text" {
		return encode(os.Stdout, c.Output, cfg)
	}
	width := termWidth()
	lines := []string{
		ui.Row("AUTO CONNECT", fmt.Sprint(cfg.AutoConnect), "", "", width),
		ui.Row("ACCEPT ROUTES", fmt.Sprint(cfg.AcceptRoutes), "", "", width),
		ui.Row("EXIT NODE", fmt.Sprint(cfg.AdvertiseExit), "", "", width),
		ui.Row("HOSTNAME", cfg.Hostname, "", "", width),
		ui.Muted(a.settings.ConfigFile),
	}
	fmt.Println(ui.Section("Plugin config", strings.Join(lines, "\n"), width))
	return nil
}

// ConfigSetCmd updates individual keys, keeping the others.
type ConfigSetCmd struct {
	Pairs []string `arg:"" help:"auto_connect, accept_routes, advertise_exit or hostname as key=value."`
}

func (c *ConfigSetCmd) Run(g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	cfg, err = applyPairs(cfg, c.Pairs)
	if err != nil {
		return err
	}
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	fmt.Println(ui.StepOK("Configuration saved"))
	return nil
}

// applyPairs sets each key=value on cfg.
func applyPairs(cfg plugincfg.Config, pairs []string) (plugincfg.Config, error) {
	for _, p := range pairs {
		key, val, ok := strings.Cut(p, "=")
		if !ok {
			return cfg, fmt.Errorf("%q: expected key=value", p)
		}
		key = strings.ReplaceAll(strings.TrimSpace(key), "-", "_")
		var err error
		switch key {
		case "auto_connect":
			cfg.AutoConnect, err = plugincfg.ParseBool(val)
		case "accept_routes":
			cfg.AcceptRoutes, err = plugincfg.ParseBool(val)
		case "advertise_exit":
			cfg.AdvertiseExit, err = plugincfg.ParseBool(val)
		case "hostname":
			cfg.Hostname = strings.TrimSpace(val)
			err = plugincfg.ValidateHostname(cfg.Hostname)
		default:
			return cfg, fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", key, err)
		}
	}
	return cfg, nil
}

// ConfigEditCmd edits the config with a form.
type ConfigEditCmd struct{}

func (c *ConfigEditCmd) Run(g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device hostname").
				Description("Name shown in the tailnet admin console").
				Value(&cfg.Hostname).
				Validate(func(s string) error {
					if strings.ContainsAny(s, " \t") {
						return fmt.Errorf("hostname must not contain spaces")
					}
					return plugincfg.ValidateHostname(s)
				}),
			huh.NewConfirm().
				Title("Connect automatically when the server starts?").
				Value(&cfg.AutoConnect),
			huh.NewConfirm().
				Title("Accept subnet routes from other nodes?").
				Value(&cfg.AcceptRoutes),
			huh.NewConfirm().
				Title("Advertise this player as an exit node?").
				Value(&cfg.AdvertiseExit),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	fmt.Println(ui.StepOK("Configuration saved"))
	return nil
}
