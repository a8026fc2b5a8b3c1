package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hopboxdev/fpp-tailscale/internal/logtail"
)

// LogsCmd prints the tail of the plugin log.
type LogsCmd struct {
	Lines  int  `short:"n" help:"Number of lines; 0 uses settings."`
	Follow bool `short:"f" help:"Keep printing appended lines."`
}

func (c *LogsCmd) Run(ctx context.Context, g *CLI) error {
	s, err := resolveSettings(g)
	if err != nil {
		return err
	}
	n := c.Lines
	if n <= 0 {
		n = s.LogLines
	}
	out, err := logtail.Tail(s.LogFile, n)
	if err != nil {
		return err
	}
	fmt.Print(out)
	if out != "" && out[len(out)-1] != '\n' {
		fmt.Println()
	}
	if !c.Follow {
		return nil
	}
	return logtail.Follow(ctx, s.LogFile, os.Stdout)
}
