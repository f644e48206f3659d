package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
)

// Config is the top-level configuration.
type Config struct {
	Endpoint EndpointConfig `toml:"endpoint"`
	Display  DisplayConfig  `toml:"display"`
	Web      WebConfig      `toml:"web"`
	Log      LogConfig      `toml:"log"`
}

// EndpointConfig describes the status backend.
type EndpointConfig struct {
	URL          string   `toml:"url"`
	Timeout      Duration `toml:"timeout"`
	PollInterval Duration `toml:"poll_interval"`
}

// DisplayConfig selects the presentation variant and the load readout.
type DisplayConfig struct {
	Theme        string   `toml:"theme"`
	ThemeFile    string   `toml:"theme_file"`
	LoadSource   string   `toml:"load_source"`
	LoadInterval Duration `toml:"load_interval"`
}

// WebConfig configures the optional browser host. An empty Listen disables it.
// PIDFile and HealthFile are only written while the host runs.
type WebConfig struct {
	Listen     string `toml:"listen"`
	PIDFile    string `toml:"pid_file"`
	HealthFile string `toml:"health_file"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Validate reports every problem in cfg at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Endpoint.URL)
	switch {
	case c.Endpoint.URL == "":
		errs = append(errs, errors.New("endpoint.url: required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("endpoint.url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("endpoint.url: unsupported scheme %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("endpoint.url: missing host"))
	}

	if c.Endpoint.PollInterval.Duration < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("endpoint.poll_interval: %s is below 10ms", c.Endpoint.PollInterval))
	}
	if c.Endpoint.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("endpoint.timeout: must be positive"))
	}
	if c.Display.LoadInterval.Duration < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("display.load_interval: %s is below 10ms", c.Display.LoadInterval))
	}

	switch c.Display.LoadSource {
	case "random", "host":
	default:
		errs = append(errs, fmt.Errorf("display.load_source: %q is not random or host", c.Display.LoadSource))
	}

	if c.Display.ThemeFile == "" {
		if _, ok := theme.Lookup(c.Display.Theme); !ok {
			errs = append(errs, fmt.Errorf("display.theme: unknown variant %q (have %s)",
				c.Display.Theme, strings.Join(theme.Names(), ", ")))
		}
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: %q is not json or console", c.Log.Format))
	}

	return errors.Join(errs...)
}
