// Package settings holds the service's own configuration, read from TOML.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "/etc/fpp-tailscale/settings.toml"

// MaxConnectTimeout keeps a bounded connect inside the API's write timeout.
const MaxConnectTimeout = 50 * time.Second

// Duration is a time.Duration written as a Go duration string ("3s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Settings configures the fpp-tailscale service. LoginTimeout bounds the
// login attempt made while reading status; ConnectTimeout bounds `tailscale up`
// for connect and auto-connect.
type Settings struct {
	Listen         string   `toml:"listen"`
	ConfigFile     string   `toml:"config_file"`
	LogFile        string   `toml:"log_file"`
	UseSudo        bool     `toml:"use_sudo"`
	TailscaleBin   string   `toml:"tailscale_bin"`
	DaemonProcess  string   `toml:"daemon_process"`
	LoginTimeout   Duration `toml:"login_timeout"`
	ConnectTimeout Duration `toml:"connect_timeout"`
	LogLines       int      `toml:"log_lines"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
}

// Default returns the settings of a stock FPP install.
func Default() Settings {
	return Settings{
		Listen:         "127.0.0.1:8765",
		ConfigFile:     "/home/fpp/media/config/plugin.fpp-tailscale",
		LogFile:        "/var/log/fpp-tailscale.log",
		UseSudo:        true,
		TailscaleBin:   "tailscale",
		DaemonProcess:  "tailscaled",
		LoginTimeout:   Duration(3 * time.Second),
		ConnectTimeout: Duration(30 * time.Second),
		LogLines:       50,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load decodes the file at path over Default. A missing file is not an error
// unless required is set. Unknown keys are rejected.
func Load(path string, required bool) (Settings, error) {
	s := Default()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return s, fmt.Errorf("parse settings %s: %s", path, strict.String())
		}
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch {
	case s.Listen == "":
		return errors.New("settings: listen is empty")
	case s.ConfigFile == "":
		return errors.New("settings: config_file is empty")
	case s.TailscaleBin == "":
		return errors.New("settings: tailscale_bin is empty")
	case s.DaemonProcess == "":
		return errors.New("settings: daemon_process is empty")
	case s.LoginTimeout <= 0:
		return errors.New("settings: login_timeout must be positive")
	case s.ConnectTimeout <= 0 || s.ConnectTimeout > Duration(MaxConnectTimeout):
		return fmt.Errorf("settings: connect_timeout must be in (0, %s]", MaxConnectTimeout)
	case s.LogLines <= 0:
		return errors.New("settings: log_lines must be positive")
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("settings: unknown log_format %q", s.LogFormat)
	}
	return nil
}
