// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	-ldflags "-X github.com/hopboxdev/fpp-tailscale/internal/version.Version=v0.3.0"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	commit := Commit
	if commit == "none" {
		commit = vcsRevision()
	}
	return fmt.Sprintf("fpp-tailscale %s (commit %s, built %s, %s %s/%s)",
		Version, commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// vcsRevision falls back to the revision stamped by the go tool.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "none"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "none"
}
