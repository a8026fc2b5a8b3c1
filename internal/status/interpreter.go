package status

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// Interpreter gathers daemon signals and resolves them to a
// ConnectionState.
type Interpreter struct {
	daemon   tailscale.Daemon
	recovery Recovery
	rules    []Rule
	logger   *log.Logger
	// OnState, if set, is called with every computed state.
	OnState func(ConnectionState)
}

// NewInterpreter returns an Interpreter using DefaultRules.
func NewInterpreter(d tailscale.Daemon, rec Recovery, logger *log.Logger) *Interpreter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Interpreter{daemon: d, recovery: rec, rules: DefaultRules, logger: logger}
}

// Gather collects signals. When the daemon is not running no further
// commands are issued.
func (in *Interpreter) Gather(ctx context.Context) Signals {
	s := Signals{DaemonRunning: in.daemon.ProbeDaemon(ctx)}
	if !s.DaemonRunning {
		return s
	}
	s.Text = in.daemon.StatusText(ctx).Output
	s.TextSignal = ClassifyText(s.Text)
	s.JSON = in.daemon.StatusJSON(ctx)
	return s
}

// Interpret returns the current connection state. It never fails; daemon
// problems are reported through the state itself.
func (in *Interpreter) Interpret(ctx context.Context) ConnectionState {
	sig := in.Gather(ctx)
	st := Decide(ctx, in.rules, sig, in.recovery)
	in.logger.Debug("connection state", "cause", st.Cause, "signal", sig.TextSignal, "auth_url", st.AuthURL != nil)
	if in.OnState != nil {
		in.OnState(st)
	}
	return st
}
