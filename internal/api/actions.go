package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/hopboxdev/fpp-tailscale/internal/logtail"
	"github.com/hopboxdev/fpp-tailscale/internal/plugincfg"
)

// maxBodySize caps request bodies; saveConfig payloads are tiny.
const maxBodySize = 64 << 10

const (
	msgInvalidJSON  = "Invalid JSON input"
	msgSaved        = "Configuration saved successfully"
	msgNotWritable  = "Config file not writable: "
	msgWriteFailed  = "Failed to write config file: "
	msgUnknownAct   = "Unknown action: "
	msgBodyTooLarge = "Request body too large"
)

// actionFunc handles one action. ok feeds the success metric.
type actionFunc func(r *http.Request, body []byte) (resp any, ok bool)

func (s *Server) actionTable() map[string]actionFunc {
	return map[string]actionFunc{
		"getStatus":     s.getStatus,
		"getConfig":     s.getConfig,
		"saveConfig":    s.saveConfig,
		"connect":       s.connect,
		"disconnect":    s.disconnect,
		"logout":        s.logout,
		"getLogs":       s.getLogs,
		"getSystemInfo": s.getSystemInfo,
	}
}

// handleAPI dispatches on the action query parameter. Every outcome,
// including failures and panics, is reported as HTTP 200 with a JSON
// envelope; only oversized bodies get 413.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("action")
	fn, known := s.actions[name]
	if !known {
		s.deps.Metrics.ObserveAction("unknown", false, 0)
		writeJSON(w, http.StatusOK, Envelope{Message: msgUnknownAct + name})
		return
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, Envelope{Message: msgBodyTooLarge})
				return
			}
			writeJSON(w, http.StatusOK, Envelope{Message: "Error: read request: " + err.Error()})
			return
		}
	}

	start := time.Now()
	resp, ok := s.invoke(name, fn, r, body)
	s.deps.Metrics.ObserveAction(name, ok, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

// invoke runs fn, converting a panic into a failure envelope.
func (s *Server) invoke(name string, fn actionFunc, r *http.Request, body []byte) (resp any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.deps.Logger.Error("action panicked", "action", name, "panic", rec)
			resp, ok = Envelope{Message: fmt.Sprintf("Error: %v", rec)}, false
		}
	}()
	return fn(r, body)
}

func (s *Server) getStatus(r *http.Request, _ []byte) (any, bool) {
	st := s.deps.Status.Interpret(r.Context())
	return StatusResponse{Success: true, Status: st}, true
}

func (s *Server) getConfig(_ *http.Request, _ []byte) (any, bool) {
	cfg, err := s.deps.Store.Load()
	if err != nil {
		s.deps.Logger.Warn("load config", "err", err)
		return Envelope{Message: "Error: " + err.Error()}, false
	}
	return ConfigResponse{Success: true, Config: cfg}, true
}

func (s *Server) saveConfig(_ *http.Request, body []byte) (any, bool) {
	cfg, err := DecodeConfig(body)
	if err != nil {
		s.deps.Logger.Debug("rejecting config", "err", err)
		return MessageResponse{Message: err.Error()}, false
	}
	if err := s.deps.Store.Save(cfg); err != nil {
		s.deps.Logger.Warn("save config", "err", err)
		if errors.Is(err, plugincfg.ErrNotWritable) {
			return MessageResponse{Message: msgNotWritable + s.deps.ConfigFile}, false
		}
		return MessageResponse{Message: msgWriteFailed + err.Error()}, false
	}
	s.deps.Logger.Info("config saved", "auto_connect", cfg.AutoConnect, "accept_routes", cfg.AcceptRoutes,
		"advertise_exit", cfg.AdvertiseExit, "hostname", cfg.Hostname)
	return MessageResponse{Success: true, Message: msgSaved}, true
}

func (s *Server) connect(r *http.Request, _ []byte) (any, bool) {
	res := s.deps.Connection.Connect(r.Context())
	return ConnectResponse{Success: res.Success, Message: res.Message, AuthURL: res.AuthURL}, res.Success
}

func (s *Server) disconnect(r *http.Request, _ []byte) (any, bool) {
	res := s.deps.Connection.Disconnect(r.Context())
	return MessageResponse{Success: res.Success, Message: res.Message}, res.Success
}

func (s *Server) logout(r *http.Request, _ []byte) (any, bool) {
	res := s.deps.Connection.Logout(r.Context())
	return MessageResponse{Success: res.Success, Message: res.Message}, res.Success
}

func (s *Server) getLogs(_ *http.Request, _ []byte) (any, bool) {
	logs, err := logtail.Tail(s.deps.LogFile, s.deps.LogLines)
	if err != nil {
		return Envelope{Message: "Error: " + err.Error()}, false
	}
	return LogsResponse{Success: true, Logs: logs}, true
}

func (s *Server) getSystemInfo(_ *http.Request, _ []byte) (any, bool) {
	h, err := s.deps.Hostname()
	if err != nil || h == "" {
		h = "unknown"
	}
	return SystemInfoResponse{Success: true, Hostname: h}, true
}

// DecodeConfig parses a saveConfig body. Keys may be snake_case or
// camelCase; booleans may be JSON booleans, 0/1, or the strings accepted by
// plugincfg.ParseBool. Fields not present are zero: a save is a full
// replace.
func DecodeConfig(body []byte) (plugincfg.Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return plugincfg.Config{}, errors.New(msgInvalidJSON)
	}

	var cfg plugincfg.Config
	for key, val := range raw {
		var err error
		switch snakeCase(key) {
		case "auto_connect":
			cfg.AutoConnect, err = decodeBool(val)
		case "accept_routes":
			cfg.AcceptRoutes, err = decodeBool(val)
		case "advertise_exit":
			cfg.AdvertiseExit, err = decodeBool(val)
		case "hostname":
			cfg.Hostname, err = decodeString(val)
		}
		if err != nil {
			return plugincfg.Config{}, fmt.Errorf("Invalid value for %s: %v", key, err)
		}
	}
	cfg.Hostname = strings.TrimSpace(cfg.Hostname)
	if err := plugincfg.ValidateHostname(cfg.Hostname); err != nil {
		return plugincfg.Config{}, fmt.Errorf("Invalid value for hostname: %v", err)
	}
	return cfg, nil
}

func decodeBool(val json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(val, &v); err != nil {
		return false, err
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		switch t {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case string:
		return plugincfg.ParseBool(t)
	}
	return false, fmt.Errorf("not a boolean: %s", val)
}

func decodeString(val json.RawMessage) (string, error) {
	var v *string
	if err := json.Unmarshal(val, &v); err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// snakeCase maps "autoConnect" to "auto_connect"; snake_case input is
// returned unchanged.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
