package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

const appDir = "posture-pulse"

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/posture-pulse/config.toml
//  2. ~/.config/posture-pulse/config.toml
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes TOML over the defaults, then applies env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	state := filepath.Join(xdgStateHome(home), appDir)
	return &Config{
		Endpoint: EndpointConfig{
			URL:          "http://127.0.0.1:5001/status",
			Timeout:      Duration{2 * time.Second},
			PollInterval: Duration{500 * time.Millisecond},
		},
		Display: DisplayConfig{
			Theme:        theme.DefaultName,
			LoadSource:   "random",
			LoadInterval: Duration{200 * time.Millisecond},
		},
		Web: WebConfig{
			PIDFile:    filepath.Join(state, "web.pid"),
			HealthFile: filepath.Join(state, "health.json"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(state, "posture-pulse.log"),
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTURE_ENDPOINT"); v != "" {
		cfg.Endpoint.URL = v
	}
	if v := os.Getenv("POSTURE_THEME"); v != "" {
		cfg.Display.Theme = v
	}
	if v := os.Getenv("POSTURE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, appDir, "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, appDir, "config.toml"))
	}

	return paths
}

func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
