// Package execrun runs shell command lines and captures their merged output.
package execrun

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Result is the outcome of one command. Failures are reported only through
// ExitCode and Output; a Runner never returns an error.
type Result struct {
	Output   string
	ExitCode int
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Runner executes a command line.
type Runner interface {
	Run(ctx context.Context, command string) Result
}

// Observer is called after every command with its result and duration.
type Observer func(command string, res Result, elapsed time.Duration)

// exitNotFound mirrors the shell's status for a missing program.
const exitNotFound = 127

// defaultWaitDelay bounds how long Run waits for the output pipe to close
// after ctx kills the shell.
const defaultWaitDelay = 2 * time.Second

// ShellRunner runs commands through `sh -c` with stderr merged into stdout.
type ShellRunner struct {
	Shell string // default "sh"
	// WaitDelay is passed to exec.Cmd; a grandchild still holding the output
	// pipe is abandoned after it. Default 2s.
	WaitDelay time.Duration
	Logger    *log.Logger
	Observe   Observer
}

// NewShellRunner returns a ShellRunner that logs to logger.
func NewShellRunner(logger *log.Logger) *ShellRunner {
	return &ShellRunner{Logger: logger}
}

// Run executes command and waits for it to exit. ctx cancellation kills the
// shell; there is no other timeout.
func (r *ShellRunner) Run(ctx context.Context, command string) Result {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	start := time.Now()
	out, err := cmd.CombinedOutput()
	res := Result{Output: strings.TrimRight(string(out), "\r\n")}
	if err != nil {
		res.ExitCode, res.Output = classify(err, res.Output)
	}
	elapsed := time.Since(start)

	if r.Logger != nil {
		r.Logger.Debug("command finished", "cmd", command, "exit", res.ExitCode, "elapsed", elapsed.Round(time.Millisecond))
	}
	if r.Observe != nil {
		r.Observe(command, res, elapsed)
	}
	return res
}

// classify turns an exec error into an exit code, appending the error text to
// output when the process never ran.
func classify(err error, output string) (int, string) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), output
	}
	code := -1
	if errors.Is(err, exec.ErrNotFound) {
		code = exitNotFound
	}
	if output != "" {
		output += "\n"
	}
	return code, output + err.Error()
}

// Program returns the name of the program a command line invokes, skipping
// sudo and timeout wrappers. Used as a low-cardinality metrics label.
func Program(command string) string {
	fields := strings.Fields(command)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch {
		case f == "sudo":
			continue
		case strings.HasPrefix(f, "-"):
			continue
		case f == "timeout":
			i++ // duration argument
			continue
		}
		return filepath.Base(f)
	}
	return "unknown"
}
