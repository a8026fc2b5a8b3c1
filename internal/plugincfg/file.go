package plugincfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hopboxdev/fpp-tailscale/internal/kvfile"
)

const (
	keyAutoConnect   = "auto_connect"
	keyAcceptRoutes  = "accept_routes"
	keyAdvertiseExit = "advertise_exit"
	keyHostname      = "hostname"
)

// FileStore keeps the config in a flat key/value file.
type FileStore struct {
	Path     string
	Hostname HostnameFunc
	now      func() time.Time
}

// NewFileStore returns a FileStore for path using the system hostname.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, Hostname: SystemHostname, now: time.Now}
}

// Load reads the file and merges it over Defaults. A missing file yields the
// defaults.
func (s *FileStore) Load() (Config, error) {
	cfg := Defaults()
	values, err := kvfile.ParseFile(s.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return resolveHostname(cfg, s.Hostname), nil
	case err != nil:
		var syn *kvfile.SyntaxError
		if errors.As(err, &syn) {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrMalformed, s.Path, syn)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	for key, dst := range map[string]*bool{
		keyAutoConnect:   &cfg.AutoConnect,
		keyAcceptRoutes:  &cfg.AcceptRoutes,
		keyAdvertiseExit: &cfg.AdvertiseExit,
	} {
		v, ok := values[key]
		if !ok {
			continue
		}
		b, err := ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %s: %w", s.Path, key, err)
		}
		*dst = b
	}
	if v, ok := values[keyHostname]; ok {
		cfg.Hostname = v
	}
	return resolveHostname(cfg, s.Hostname), nil
}

// Save writes cfg atomically with mode 0666.
func (s *FileStore) Save(cfg Config) error {
	if err := ValidateHostname(cfg.Hostname); err != nil {
		return err
	}
	if fi, err := os.Stat(s.Path); err == nil {
		if fi.IsDir() || !writable(s.Path) {
			return fmt.Errorf("%w: %s", ErrNotWritable, s.Path)
		}
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	header := []string{
		"Tailscale Plugin Configuration",
		"Generated: " + now().Format("2006-01-02 15:04:05"),
	}
	pairs := []kvfile.Pair{
		{Key: keyAutoConnect, Value: strconv.FormatBool(cfg.AutoConnect)},
		{Key: keyAcceptRoutes, Value: strconv.FormatBool(cfg.AcceptRoutes)},
		{Key: keyAdvertiseExit, Value: strconv.FormatBool(cfg.AdvertiseExit)},
		{Key: keyHostname, Value: cfg.Hostname},
	}
	if err := kvfile.Write(tmp, header, pairs); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// CreateTemp uses 0600 and the umask would mask a mode passed at create.
	if err := os.Chmod(tmp.Name(), 0o666); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func writable(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
