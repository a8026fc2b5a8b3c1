package connection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopboxdev/fpp-tailscale/internal/authflow"
	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

func setup(s *execrun.Script, cfg plugincfg.Config) (*connection.Controller, *status.Interpreter, *plugincfg.MemoryStore) {
	cli := tailscale.NewCLI(s, tailscale.Options{UseSudo: true}, nil)
	store := plugincfg.NewMemoryStore(cfg)
	in := status.NewInterpreter(cli, authflow.New(cli, store, nil), nil)
	return connection.New(cli, store, nil), in, store
}

func TestConnectFlags(t *testing.T) {
	s := execrun.NewScript().On("tailscale up", execrun.Result{Output: ""})
	c, _, _ := setup(s, plugincfg.Config{AcceptRoutes: true, AdvertiseExit: true, Hostname: "show pi"})

	res := c.Connect(context.Background())
	assert.True(t, res.Success)
	assert.Nil(t, res.AuthURL)
	assert.Equal(t, []string{"timeout 30 sudo tailscale up --accept-routes --advertise-exit-node --hostname='show pi'"}, s.Commands())
}

func TestConnectAuthURLCountsAsSuccess(t *testing.T) {
	out := "To authenticate, visit:\n\n\thttps://login.tailscale.com/a/f00\n"
	s := execrun.NewScript().On("tailscale up", execrun.Result{Output: out, ExitCode: 1})
	c, _, _ := setup(s, plugincfg.Config{Hostname: "h"})

	res := c.Connect(context.Background())
	assert.True(t, res.Success)
	require.NotNil(t, res.AuthURL)
	assert.Equal(t, "https://login.tailscale.com/a/f00", *res.AuthURL)
	assert.Equal(t, out, res.Message)
}

func TestConnectFailure(t *testing.T) {
	s := execrun.NewScript().On("tailscale up", execrun.Result{Output: "backend error", ExitCode: 1})
	c, _, _ := setup(s, plugincfg.Config{Hostname: "h"})

	res := c.Connect(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "backend error", res.Message)
}

func TestConnectTimedOut(t *testing.T) {
	s := execrun.NewScript().On("tailscale up", execrun.Result{ExitCode: tailscale.ExitTimedOut})
	c, _, _ := setup(s, plugincfg.Config{Hostname: "h"})

	res := c.Connect(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "tailscale up timed out", res.Message)
}

func TestConnectTimedOutWithLoginURL(t *testing.T) {
	out := "To authenticate, visit:\n\thttps://login.tailscale.com/a/b0b\n"
	s := execrun.NewScript().On("tailscale up", execrun.Result{Output: out, ExitCode: tailscale.ExitTimedOut})
	c, _, _ := setup(s, plugincfg.Config{Hostname: "h"})

	res := c.Connect(context.Background())
	assert.True(t, res.Success)
	require.NotNil(t, res.AuthURL)
	assert.Equal(t, "https://login.tailscale.com/a/b0b", *res.AuthURL)
}

func TestConnectConfigError(t *testing.T) {
	s := execrun.NewScript()
	c, _, store := setup(s, plugincfg.Config{})
	store.LoadErr = errors.New("bad file")

	res := c.Connect(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "load config: bad file", res.Message)
	assert.Empty(t, s.Commands())
}

func TestDisconnectAndLogout(t *testing.T) {
	s := execrun.NewScript().
		On("tailscale down", execrun.Result{}).
		On("tailscale logout", execrun.Result{Output: "not logged in", ExitCode: 1})
	c, _, _ := setup(s, plugincfg.Config{})

	assert.Equal(t, connection.Result{Success: true}, c.Disconnect(context.Background()))
	assert.Equal(t, connection.Result{Message: "not logged in"}, c.Logout(context.Background()))
}

func TestAutoConnect(t *testing.T) {
	const connectedJSON = `{"Self":{"TailscaleIPs":["100.64.0.9"],"Online":true}}`
	tests := []struct {
		name    string
		cfg     plugincfg.Config
		pgrep   execrun.Result
		json    execrun.Result
		attempt bool
	}{
		{"disabled", plugincfg.Config{}, execrun.Result{}, execrun.Result{ExitCode: 1}, false},
		{"daemon down", plugincfg.Config{AutoConnect: true}, execrun.Result{ExitCode: 1}, execrun.Result{}, false},
		{"already connected", plugincfg.Config{AutoConnect: true}, execrun.Result{}, execrun.Result{Output: connectedJSON}, false},
		{"disconnected", plugincfg.Config{AutoConnect: true}, execrun.Result{}, execrun.Result{ExitCode: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := execrun.NewScript().
				On("pgrep", tt.pgrep).
				On("tailscale status --json", tt.json).
				On("tailscale up", execrun.Result{})
			tt.cfg.Hostname = "h"
			c, in, _ := setup(s, tt.cfg)

			attempted, res := c.AutoConnect(context.Background(), in)
			assert.Equal(t, tt.attempt, attempted)
			if tt.attempt {
				assert.True(t, res.Success)
			}
			assert.Equal(t, tt.attempt, s.Index("tailscale up") != -1)
		})
	}
}
