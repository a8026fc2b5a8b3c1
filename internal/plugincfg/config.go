// Package plugincfg loads and saves the plugin's persisted settings.
package plugincfg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// PlaceholderHostname is the shipped default; it is replaced by the system
// hostname on load.
const PlaceholderHostname = "fpp-player"

var (
	// ErrMalformed is returned when the config file cannot be parsed.
	ErrMalformed = errors.New("malformed config")
	// ErrNotWritable is returned when the config file exists but cannot be
	// written.
	ErrNotWritable = errors.New("config file not writable")
	// ErrBadHostname is returned for a hostname with control characters.
	ErrBadHostname = errors.New("hostname must not contain control characters")
)

// Config is the persisted plugin configuration.
type Config struct {
	AutoConnect   bool   `json:"auto_connect" yaml:"auto_connect"`
	AcceptRoutes  bool   `json:"accept_routes" yaml:"accept_routes"`
	AdvertiseExit bool   `json:"advertise_exit" yaml:"advertise_exit"`
	Hostname      string `json:"hostname" yaml:"hostname"`
}

// Store persists a Config.
type Store interface {
	Load() (Config, error)
	Save(Config) error
}

// HostnameFunc resolves the live system hostname.
type HostnameFunc func() (string, error)

// SystemHostname returns the trimmed OS hostname, or PlaceholderHostname when
// it cannot be determined.
func SystemHostname() (string, error) {
	h, err := os.Hostname()
	if err != nil {
		return PlaceholderHostname, fmt.Errorf("hostname: %w", err)
	}
	h = strings.TrimSpace(h)
	if h == "" {
		return PlaceholderHostname, nil
	}
	return h, nil
}

// Defaults returns the configuration used when nothing is persisted.
func Defaults() Config {
	return Config{Hostname: PlaceholderHostname}
}

// resolveHostname substitutes the system hostname for an unset or
// placeholder value.
func resolveHostname(c Config, fn HostnameFunc) Config {
	if c.Hostname != "" && c.Hostname != PlaceholderHostname {
		return c
	}
	if fn == nil {
		fn = SystemHostname
	}
	if h, err := fn(); err == nil && h != "" {
		c.Hostname = h
	} else {
		c.Hostname = PlaceholderHostname
	}
	return c
}

// ValidateHostname rejects a hostname the config file cannot hold.
func ValidateHostname(h string) error {
	if strings.IndexFunc(h, unicode.IsControl) >= 0 {
		return ErrBadHostname
	}
	return nil
}

// ParseBool accepts "true"/"1" and "false"/"0" (case-insensitive, spaces
// trimmed).
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: invalid boolean %q", ErrMalformed, s)
}
