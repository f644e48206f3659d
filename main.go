// posture-pulse is the presentation layer for a posture sensor.
//
// It polls the sensor's status endpoint, maps each reading onto a visual
// theme, keeps a short alert log, and draws the result as an interactive
// Bubbletea dashboard, a plain line stream, or a browser page.
//
// Usage:
//
//	posture-pulse [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: $XDG_CONFIG_HOME/posture-pulse/config.toml)
//	-web string     Serve the browser dashboard on this address instead of the TUI
//	-once           Poll once, print the result and exit
//	-demo           Start a simulated sensor and poll it
//	-theme string   Presentation variant override
//	-prompt         Print a prompt segment from the web host's health file
//	-verbose        Enable debug logging
//	-version        Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"gitlab.com/tinyland/lab/posture-pulse/pkg/app"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/config"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/daemon"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/loadsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/logging"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/presentation"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/sensorsim"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/starship"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/telemetry"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/theme"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/tui"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/web"
	"gitlab.com/tinyland/lab/posture-pulse/pkg/widgets"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// defaultLineWidth is used for line output when the terminal size is unknown.
const defaultLineWidth = 80

type mode int

const (
	modeTUI mode = iota
	modeLines
	modeWeb
	modeOnce
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		webAddr     = flag.String("web", "", "Serve the browser dashboard on this address")
		runOnce     = flag.Bool("once", false, "Poll once, print the result and exit")
		demo        = flag.Bool("demo", false, "Start a simulated sensor and poll it")
		themeName   = flag.String("theme", "", "Presentation variant (overrides config)")
		prompt      = flag.Bool("prompt", false, "Print a prompt segment from the web host's health file")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("posture-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *themeName != "" {
		cfg.Display.Theme = *themeName
	}
	if *webAddr != "" {
		cfg.Web.Listen = *webAddr
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Prompt output must stay fast and quiet: no logger, no network.
	if *prompt {
		fmt.Print(starship.Render(starship.Config{
			HealthFile: cfg.Web.HealthFile,
			ShowLoad:   true,
			ShowHealth: true,
			Profile:    promptProfile(),
		}))
		os.Exit(0)
	}

	m := selectMode(cfg, *runOnce)

	// The dashboard owns the terminal, so its logs go to the file only.
	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Quiet:  m == modeTUI,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, m, *demo, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("posture-pulse exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "posture-pulse: %v\n", err)
		os.Exit(1)
	}
}

func selectMode(cfg *config.Config, once bool) mode {
	switch {
	case once:
		return modeOnce
	case cfg.Web.Listen != "":
		return modeWeb
	case !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()):
		return modeLines
	default:
		return modeTUI
	}
}

func run(ctx context.Context, cfg *config.Config, m mode, demo bool, logger *zap.Logger) error {
	variant, err := resolveVariant(cfg)
	if err != nil {
		return err
	}

	if demo {
		addr, err := startDemoSensor(ctx, logger)
		if err != nil {
			return err
		}
		cfg.Endpoint.URL = "http://" + addr + "/status"
	}

	poller := telemetry.NewPoller(telemetry.Config{
		Endpoint: cfg.Endpoint.URL,
		Interval: cfg.Endpoint.PollInterval.Duration,
		Timeout:  cfg.Endpoint.Timeout.Duration,
	}, logger)
	session := presentation.NewSession(presentation.NewTable(variant), logger)

	logger.Info("starting posture-pulse",
		zap.String("endpoint", poller.Endpoint()),
		zap.String("variant", variant.Name),
		zap.String("session_id", session.ID()),
	)

	if m == modeOnce {
		return pollOnce(ctx, poller, session)
	}

	registry := collectors.NewRegistry()
	if err := registry.Register(poller); err != nil {
		return err
	}
	ticker := loadsim.NewTicker(loadsim.NewSource(cfg.Display.LoadSource, 0), cfg.Display.LoadInterval.Duration)
	if err := registry.Register(ticker); err != nil {
		return err
	}

	updates := make(chan collectors.Update, collectors.DefaultUpdateBufferSize)
	runner := collectors.NewRunner(registry, updates, collectors.WithLogger(logger))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := runner.Start(runCtx); err != nil {
		return err
	}
	defer runner.Stop()

	switch m {
	case modeWeb:
		return runWeb(runCtx, cfg, registry, runner, session, updates, logger)

	case modeLines:
		r := tui.NewLineRenderer(os.Stdout, lineWidth())
		return tui.StreamLines(runCtx, updates, session, r)

	default:
		model := tui.New([]app.Widget{
			widgets.NewPostureWidget(),
			widgets.NewAlertLogWidget(),
			widgets.NewLoadWidget(),
		},
			tui.WithSession(session),
			tui.WithUpdates(updates),
			tui.WithLogger(logger),
		)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func runWeb(ctx context.Context, cfg *config.Config, registry *collectors.Registry, runner *collectors.Runner,
	session *presentation.Session, updates <-chan collectors.Update, logger *zap.Logger) error {
	if cfg.Web.PIDFile != "" {
		pid, err := daemon.AcquirePID(cfg.Web.PIDFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := pid.Release(); err != nil {
				logger.Warn("releasing pid file", zap.Error(err))
			}
		}()
	}

	srv := web.NewServer(session, runner.Health, logger)

	if cfg.Web.HealthFile != "" {
		reporter := daemon.NewHealthReporter(cfg.Web.HealthFile, daemon.DefaultHealthInterval, func() daemon.Health {
			st := srv.State()
			h := daemon.Health{
				SessionID:  st.SessionID,
				Variant:    st.Variant,
				LastStatus: st.LastKnownStatus,
				LastSeq:    st.LastSeq,
				Load:       st.Load,
				Clients:    st.Clients,
				Collectors: registry.AllStatus(),
			}
			if st.Last != nil {
				a := st.Last.Angle
				h.LastAngle = &a
			}
			return h
		}, logger)
		reportCtx, stopReport := context.WithCancel(ctx)
		done := reporter.Start(reportCtx)
		defer func() {
			stopReport()
			<-done
		}()
	}

	return srv.Run(ctx, cfg.Web.Listen, updates)
}

// resolveVariant loads the custom theme file when one is configured and
// registers it so the TUI can cycle through it.
func resolveVariant(cfg *config.Config) (theme.Variant, error) {
	if cfg.Display.ThemeFile == "" {
		return theme.Get(cfg.Display.Theme), nil
	}
	v, err := theme.LoadFile(cfg.Display.ThemeFile)
	if err != nil {
		return theme.Variant{}, fmt.Errorf("loading theme file: %w", err)
	}
	theme.Register(v)
	return v, nil
}

func pollOnce(ctx context.Context, poller *telemetry.Poller, session *presentation.Session) error {
	res, err := poller.Poll(ctx)
	if err != nil {
		session.Failure(err)
		return err
	}
	out, _ := session.Apply(res)
	r := tui.NewLineRenderer(os.Stdout, lineWidth())
	return r.Write(out, res.ReceivedAt)
}

func startDemoSensor(ctx context.Context, logger *zap.Logger) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("demo sensor: %w", err)
	}
	addr := ln.Addr().String()
	// Run binds again, so release the probe port first.
	_ = ln.Close()

	srv := sensorsim.NewServer(sensorsim.Options{MaxLatency: 300 * time.Millisecond}, logger.Named("sensorsim"))
	go func() {
		if err := srv.Run(ctx, addr); err != nil {
			logger.Warn("demo sensor stopped", zap.Error(err))
		}
	}()
	return addr, nil
}

func lineWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 {
		return defaultLineWidth
	}
	return w
}

// promptProfile is fixed rather than detected: prompts capture stdout, so
// TTY detection would always report no colour.
func promptProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI256
}
