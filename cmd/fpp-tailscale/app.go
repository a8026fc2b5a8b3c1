package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hopboxdev/fpp-tailscale/internal/authflow"
	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
	"github.com/hopboxdev/fpp-tailscale/internal/logging"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/settings"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// app is the wired set of collaborators shared by the subcommands.
type app struct {
	settings settings.Settings
	logger   *log.Logger
	runner   *execrun.ShellRunner
	daemon   *tailscale.CLI
	store    plugincfg.Store
	status   *status.Interpreter
	conn     *connection.Controller
}

// resolveSettings loads the settings file and applies global flag overrides.
func resolveSettings(g *CLI) (settings.Settings, error) {
	path, required := g.Settings, true
	if path == "" {
		path, required = settings.DefaultPath, false
	}
	s, err := settings.Load(path, required)
	if err != nil {
		return s, err
	}
	if g.ConfigFile != "" {
		s.ConfigFile = g.ConfigFile
	}
	if g.LogFile != "" {
		s.LogFile = g.LogFile
	}
	switch g.Sudo {
	case "yes":
		s.UseSudo = true
	case "no":
		s.UseSudo = false
	}
	return s, nil
}

func newApp(g *CLI) (*app, error) {
	s, err := resolveSettings(g)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, logging.Options{
		Level:   s.LogLevel,
		Format:  s.LogFormat,
		Verbose: g.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	runner := execrun.NewShellRunner(logger)
	daemon := tailscale.NewCLI(runner, tailscale.Options{
		Binary:         s.TailscaleBin,
		DaemonProcess:  s.DaemonProcess,
		UseSudo:        s.UseSudo,
		LoginTimeout:   time.Duration(s.LoginTimeout),
		ConnectTimeout: time.Duration(s.ConnectTimeout),
	}, logger)
	store := plugincfg.NewFileStore(s.ConfigFile)
	recovery := authflow.New(daemon, store, logger)

	return &app{
		settings: s,
		logger:   logger,
		runner:   runner,
		daemon:   daemon,
		store:    store,
		status:   status.NewInterpreter(daemon, recovery, logger),
		conn:     connection.New(daemon, store, logger),
	}, nil
}
