package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the top-level Kong struct.
type CLI struct {
	Settings   string `help:"Settings file (default /etc/fpp-tailscale/settings.toml)." type:"path" env:"FPP_TAILSCALE_SETTINGS"`
	ConfigFile string `help:"Plugin config file; overrides settings." type:"path"`
	LogFile    string `help:"Plugin log file; overrides settings." type:"path"`
	Sudo       string `help:"Run tailscale through sudo: auto uses settings." enum:"auto,yes,no" default:"auto"`
	Verbose    bool   `short:"v" help:"Debug logging."`

	Serve      ServeCmd      `cmd:"" help:"Serve the plugin API over HTTP."`
	Status     StatusCmd     `cmd:"" help:"Show the Tailscale connection state."`
	Connect    ConnectCmd    `cmd:"" help:"Bring Tailscale up using the plugin config."`
	Disconnect DisconnectCmd `cmd:"" help:"Bring Tailscale down."`
	Logout     LogoutCmd     `cmd:"" help:"Log this device out of the tailnet."`
	Logs       LogsCmd       `cmd:"" help:"Print the plugin log."`
	Config     ConfigCmd     `cmd:"" help:"Show or change the plugin config."`
	Watch      WatchCmd      `cmd:"" help:"Live dashboard backed by a running server."`
	Version    VersionCmd    `cmd:"" help:"Print version."`
}

func main() {
	var cli CLI
	k, err := kong.New(&cli,
		kong.Name("fpp-tailscale"),
		kong.Description("Tailscale management for Falcon Player"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			NoExpandSubcommands: true,
			Compact:             true,
		}),
	)
	if err != nil {
		panic(err)
	}

	args := os.Args[1:]
	if len(args) == 0 || (len(args) == 1 && args[0] == "help") {
		_, _ = k.Parse([]string{"--help"})
		os.Exit(0)
	}

	kctx, err := k.Parse(args)
	k.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))
	k.FatalIfErrorf(kctx.Run(&cli))
}
