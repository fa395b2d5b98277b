// Package config handles TOML-based configuration loading and validation.
// Nothing is ever written back; the file is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Player          string   `toml:"player"`
	Viewer          string   `toml:"viewer"`
	URLTemplate     string   `toml:"url_template"`
	PollInterval    Duration `toml:"poll_interval"`
	WindowAttempts  int      `toml:"window_attempts"`
	WindowDelay     Duration `toml:"window_delay"`
	CommandTimeout  Duration `toml:"command_timeout"`
	IPCFlag         string   `toml:"ipc_flag"`
	Transport       string   `toml:"transport"`
	PreviewSelector string   `toml:"preview_selector"`
	PreviewLimit    int      `toml:"preview_limit"`
	Debug           bool     `toml:"debug"`
	LogFile         string   `toml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Player:         "smplayer",
		Viewer:         "google-chrome-stable",
		URLTemplate:    "https://context.reverso.net/translation/spanish-english/{query}",
		PollInterval:   Duration{500 * time.Millisecond},
		WindowAttempts: 10,
		WindowDelay:    Duration{200 * time.Millisecond},
		CommandTimeout: Duration{2 * time.Second},
		IPCFlag:        "input-ipc-server",
		Transport:      "socat",
		PreviewLimit:   3,
		Debug:          false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sublookup"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sublookup"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Player) == "" {
		return fmt.Errorf("player cannot be empty")
	}
	if strings.TrimSpace(c.Viewer) == "" {
		return fmt.Errorf("viewer cannot be empty")
	}
	if !strings.Contains(c.URLTemplate, "{query}") {
		return fmt.Errorf("url_template %q must contain {query}", c.URLTemplate)
	}

	if c.PollInterval.Duration < 50*time.Millisecond {
		return fmt.Errorf("poll_interval %s is below 50ms", c.PollInterval)
	}
	if c.WindowAttempts < 1 || c.WindowAttempts > 100 {
		return fmt.Errorf("window_attempts %d out of range (1-100)", c.WindowAttempts)
	}
	if c.WindowDelay.Duration < 0 {
		return fmt.Errorf("window_delay cannot be negative")
	}
	if c.CommandTimeout.Duration <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}

	if c.IPCFlag == "" || strings.ContainsAny(c.IPCFlag, " \t=") {
		return fmt.Errorf("ipc_flag %q must be a bare option name", c.IPCFlag)
	}

	validTransports := map[string]bool{"socat": true, "socket": true}
	if !validTransports[strings.ToLower(c.Transport)] {
		return fmt.Errorf("unsupported transport %q (valid: socat, socket)", c.Transport)
	}

	if c.PreviewLimit < 1 || c.PreviewLimit > 20 {
		return fmt.Errorf("preview_limit %d out of range (1-20)", c.PreviewLimit)
	}

	return nil
}

// LogPath returns where debug logs go, resolving ~ in log_file.
func (c *Config) LogPath() (string, error) {
	path := c.LogFile
	if path == "" {
		return filepath.Join(os.TempDir(), "sublookup.log"), nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
