package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopboxdev/fpp-tailscale/internal/authflow"
	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/settings"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

// heldUp is a Runner whose `tailscale up` waits until release is closed,
// like an interactive login nobody has completed.
type heldUp struct {
	*execrun.Script
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (h *heldUp) Run(ctx context.Context, cmd string) execrun.Result {
	if strings.Contains(cmd, "tailscale up") {
		h.once.Do(func() { close(h.started) })
		select {
		case <-h.release:
		case <-ctx.Done():
		}
	}
	return h.Script.Run(ctx, cmd)
}

func testApp(runner execrun.Runner, cfg plugincfg.Config) *app {
	logger := log.New(io.Discard)
	daemon := tailscale.NewCLI(runner, tailscale.Options{}, logger)
	store := plugincfg.NewMemoryStore(cfg)
	return &app{
		settings: settings.Default(),
		logger:   logger,
		daemon:   daemon,
		store:    store,
		status:   status.NewInterpreter(daemon, authflow.New(daemon, store, logger), logger),
		conn:     connection.New(daemon, store, logger),
	}
}

func TestServeAnswersWhileAutoConnectBlocks(t *testing.T) {
	runner := &heldUp{
		Script: execrun.NewScript().
			On("pgrep", execrun.Result{Output: "42"}).
			On("tailscale status --json", execrun.Result{Output: `{"BackendState":"NeedsLogin"}`}).
			On("tailscale up", execrun.Result{Output: "https://login.tailscale.com/a/abc123", ExitCode: tailscale.ExitTimedOut}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	defer close(runner.release)
	a := testApp(runner, plugincfg.Config{AutoConnect: true, Hostname: "fpp"})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.serve(ctx, ln, true) }()

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("auto-connect never ran tailscale up")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeWithoutAutoConnect(t *testing.T) {
	s := execrun.NewScript()
	a := testApp(s, plugincfg.Config{AutoConnect: true, Hostname: "fpp"})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.serve(ctx, ln, false) }()

	resp, err := (&http.Client{Timeout: 2 * time.Second}).Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()

	cancel()
	require.NoError(t, <-errc)
	assert.Empty(t, s.Commands())
}
