package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopboxdev/fpp-tailscale/internal/api"
	"github.com/hopboxdev/fpp-tailscale/internal/authflow"
	"github.com/hopboxdev/fpp-tailscale/internal/connection"
	"github.com/hopboxdev/fpp-tailscale/internal/execrun"
	"github.com/hopboxdev/fpp-tailscale/internal/metrics"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
	"github.com/hopboxdev/fpp-tailscale/internal/status"
	"github.com/hopboxdev/fpp-tailscale/internal/tailscale"
)

const systemHost = "fpp-stage"

type fixture struct {
	script *execrun.Script
	store  *plugincfg.MemoryStore
	srv    *httptest.Server
}

func newFixture(t *testing.T, s *execrun.Script, logFile string) *fixture {
	t.Helper()
	host := func() (string, error) { return systemHost, nil }
	cli := tailscale.NewCLI(s, tailscale.Options{UseSudo: true}, nil)
	store := plugincfg.NewMemoryStore(plugincfg.Defaults())
	store.Hostname = host
	reg := metrics.NewRegistry()

	h := api.NewServer(api.Deps{
		Status:     status.NewInterpreter(cli, authflow.New(cli, store, nil), nil),
		Connection: connection.New(cli, store, nil),
		Store:      store,
		ConfigFile: "/home/fpp/media/config/plugin.fpp-tailscale",
		LogFile:    logFile,
		LogLines:   50,
		Hostname:   host,
		Metrics:    metrics.NewPrometheusRecorder(reg),
		Registry:   reg,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{script: s, store: store, srv: srv}
}

func (f *fixture) call(t *testing.T, method, action, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+"/api?action="+action, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestScenarioDaemonAbsent(t *testing.T) {
	f := newFixture(t, execrun.NewScript().On("pgrep", execrun.Result{ExitCode: 1}), "")

	code, out := f.call(t, http.MethodGet, "getStatus", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	st := out["status"].(map[string]any)
	assert.Equal(t, false, st["connected"])
	assert.Equal(t, false, st["daemon_running"])
	assert.Equal(t, "Tailscale daemon not running", st["status"])
	assert.Equal(t, "daemon_down", st["cause"])
	assert.Nil(t, st["auth_url"])
	assert.Len(t, f.script.Commands(), 1)
}

func TestScenarioConnected(t *testing.T) {
	s := execrun.NewScript().
		On("pgrep", execrun.Result{Output: "99"}).
		On("tailscale status", execrun.Result{Output: "100.64.1.2 fpp1 linux -"}).
		On("tailscale status --json", execrun.Result{Output: `{"Self":{"TailscaleIPs":["100.64.1.2"],"Online":true,"HostName":"fpp1"}}`})
	f := newFixture(t, s, "")

	_, out := f.call(t, http.MethodGet, "getStatus", "")
	st := out["status"].(map[string]any)
	assert.Equal(t, true, st["connected"])
	assert.Equal(t, "100.64.1.2", st["ip"])
	assert.Equal(t, "fpp1", st["hostname"])
	assert.Equal(t, true, st["online"])
	assert.Equal(t, "Connected", st["status"])
	v, present := st["auth_url"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestScenarioNeedsLogin(t *testing.T) {
	s := execrun.NewScript().
		On("pgrep", execrun.Result{}).
		On("tailscale status", execrun.Result{Output: "Logged out.\nLog in at: run `tailscale up`"}).
		On("tailscale status --json", execrun.Result{Output: `{"BackendState":"NeedsLogin","Self":{"TailscaleIPs":[],"Online":false}}`}).
		On("tailscale up", execrun.Result{Output: "\nTo authenticate, visit:\n\n\thttps://login.tailscale.com/a/abc123\n\n"})
	f := newFixture(t, s, "")

	_, out := f.call(t, http.MethodGet, "getStatus", "")
	st := out["status"].(map[string]any)
	assert.Equal(t, false, st["connected"])
	assert.Equal(t, "Authentication required", st["status"])
	assert.Equal(t, "https://login.tailscale.com/a/abc123", st["auth_url"])
	assert.Contains(t, f.script.Commands()[3], "--hostname='"+systemHost+"'")
}

func TestScenarioSaveConfigEmptyHostname(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")

	_, out := f.call(t, http.MethodPost, "saveConfig", `{"autoConnect":true,"hostname":""}`)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Configuration saved successfully", out["message"])

	_, out = f.call(t, http.MethodGet, "getConfig", "")
	cfg := out["config"].(map[string]any)
	assert.Equal(t, true, cfg["auto_connect"])
	assert.Equal(t, false, cfg["accept_routes"])
	assert.Equal(t, systemHost, cfg["hostname"])
}

func TestSaveConfigRejectsBadInput(t *testing.T) {
	for name, body := range map[string]string{
		"empty":     "",
		"null":      "null",
		"array":     "[1,2]",
		"empty obj": "{}",
		"garbage":   "{not json",
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, execrun.NewScript(), "")
			code, out := f.call(t, http.MethodPost, "saveConfig", body)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, "Invalid JSON input", out["message"])
			assert.Zero(t, f.store.Saved())
		})
	}

	f := newFixture(t, execrun.NewScript(), "")
	_, out := f.call(t, http.MethodPost, "saveConfig", `{"auto_connect":"maybe"}`)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "auto_connect")
	assert.Zero(t, f.store.Saved())
}

func TestSaveConfigRejectsControlCharactersInHostname(t *testing.T) {
	for _, body := range []string{
		`{"autoConnect":false,"hostname":"fpp1\nauto_connect = true"}`,
		`{"hostname":"fpp1\nbogus"}`,
		`{"hostname":"fpp1\r"}`,
	} {
		f := newFixture(t, execrun.NewScript(), "")
		_, out := f.call(t, http.MethodPost, "saveConfig", body)
		assert.Equal(t, false, out["success"], body)
		assert.Equal(t, "Invalid value for hostname: hostname must not contain control characters", out["message"])
		assert.Zero(t, f.store.Saved())
	}
}

func TestSaveConfigStoreErrors(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")
	f.store.SaveErr = plugincfg.ErrNotWritable
	_, out := f.call(t, http.MethodPost, "saveConfig", `{"hostname":"x"}`)
	assert.Equal(t, "Config file not writable: /home/fpp/media/config/plugin.fpp-tailscale", out["message"])

	f.store.SaveErr = errors.New("disk full")
	_, out = f.call(t, http.MethodPost, "saveConfig", `{"hostname":"x"}`)
	assert.Equal(t, "Failed to write config file: disk full", out["message"])
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := api.DecodeConfig([]byte(`{"auto_connect":"1","acceptRoutes":true,"advertise_exit":0,"hostname":" show "}`))
	require.NoError(t, err)
	assert.Equal(t, plugincfg.Config{AutoConnect: true, AcceptRoutes: true, Hostname: "show"}, cfg)

	cfg, err = api.DecodeConfig([]byte(`{"hostname":null,"unrelated":5}`))
	require.NoError(t, err)
	assert.Equal(t, plugincfg.Config{}, cfg)

	_, err = api.DecodeConfig([]byte(`{"accept_routes":2}`))
	assert.Error(t, err)
	_, err = api.DecodeConfig([]byte(`{"hostname":5}`))
	assert.Error(t, err)
}

func TestConnectAction(t *testing.T) {
	s := execrun.NewScript().On("tailscale up", execrun.Result{Output: "https://login.tailscale.com/a/zz", ExitCode: 1})
	f := newFixture(t, s, "")
	require.NoError(t, f.store.Save(plugincfg.Config{AcceptRoutes: true, Hostname: "h"}))

	_, out := f.call(t, http.MethodPost, "connect", "")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "https://login.tailscale.com/a/zz", out["auth_url"])
	assert.Equal(t, []string{"timeout 30 sudo tailscale up --accept-routes --hostname='h'"}, s.Commands())
}

func TestConnectActionAlwaysCarriesAuthURL(t *testing.T) {
	s := execrun.NewScript().On("tailscale up", execrun.Result{})
	f := newFixture(t, s, "")

	_, out := f.call(t, http.MethodPost, "connect", "")
	assert.Equal(t, true, out["success"])
	v, present := out["auth_url"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestDisconnectAndLogoutActions(t *testing.T) {
	s := execrun.NewScript().
		On("tailscale down", execrun.Result{}).
		On("tailscale logout", execrun.Result{Output: "no", ExitCode: 1})
	f := newFixture(t, s, "")

	_, out := f.call(t, http.MethodPost, "disconnect", "")
	assert.Equal(t, true, out["success"])
	_, out = f.call(t, http.MethodPost, "logout", "")
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "no", out["message"])
}

func TestGetLogs(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), filepath.Join(t.TempDir(), "missing.log"))
	_, out := f.call(t, http.MethodGet, "getLogs", "")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "No logs available", out["logs"])

	path := filepath.Join(t.TempDir(), "p.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))
	f = newFixture(t, execrun.NewScript(), path)
	_, out = f.call(t, http.MethodGet, "getLogs", "")
	assert.Equal(t, "a\nb\n", out["logs"])
}

func TestGetSystemInfo(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")
	_, out := f.call(t, http.MethodGet, "getSystemInfo", "")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, systemHost, out["hostname"])
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")
	code, out := f.call(t, http.MethodGet, "reboot", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Unknown action: reboot", out["message"])
	assert.Empty(t, f.script.Commands())
}

func TestRootPathDispatches(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")
	resp, err := http.Get(f.srv.URL + "/?plugin=fpp-tailscale&action=getSystemInfo")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var out api.SystemInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
}

func TestOversizedBody(t *testing.T) {
	f := newFixture(t, execrun.NewScript(), "")
	body := `{"hostname":"` + strings.Repeat("x", 70<<10) + `"}`
	code, out := f.call(t, http.MethodPost, "saveConfig", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, false, out["success"])
	assert.Zero(t, f.store.Saved())
}

type panicStatus struct{}

func (panicStatus) Interpret(context.Context) status.ConnectionState { panic("boom") }

func TestPanicBecomesEnvelope(t *testing.T) {
	srv := httptest.NewServer(api.NewServer(api.Deps{Status: panicStatus{}}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api?action=getStatus")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Success)
	assert.Equal(t, "Error: boom", out.Message)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, execrun.NewScript().On("pgrep", execrun.Result{ExitCode: 1}), "")
	f.call(t, http.MethodGet, "getStatus", "")

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, err = http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), `fpp_tailscale_api_actions_total{action="getStatus",result="success"} 1`)
}
