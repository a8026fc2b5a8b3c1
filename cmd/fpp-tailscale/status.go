package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/hopboxdev/fpp-tailscale/internal/ui"
)

// StatusCmd prints the connection state computed in-process.
type StatusCmd struct {
	Output string `short:"o" help:"Output format." enum:"text,json,yaml" default:"text"`
}

func (c *StatusCmd) Run(ctx context.Context, g *CLI) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	st := a.status.Interpret(ctx)
	if c.Output != "text" {
		return encode(os.Stdout, c.Output, st)
	}
	width := termWidth()
	fmt.Println(ui.Section("Tailscale", strings.Join(ui.StateLines(st, width-4), "\n"), width))
	return nil
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown format %q", format)
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || w > ui.MaxWidth {
		return ui.MaxWidth
	}
	return w
}
