package main

import (
	"fmt"

	"github.com/hopboxdev/fpp-tailscale/internal/version"
)

// VersionCmd prints version info.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version.String())
	return nil
}
