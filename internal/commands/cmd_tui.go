package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/tui"
	"github.com/handsandhope/hope/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *App

	demo         bool
	demoInterval time.Duration
	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "demo",
			Usage:       "publish sample marketplace events",
			Destination: &cmd.demo,
		},
		&cli.DurationFlag{
			Name:        "demo-interval",
			Usage:       "delay between sample events",
			Value:       3 * time.Second,
			Destination: &cmd.demoInterval,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("HOPE_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	stopProfiler, err := startProfiler(ctx, cmd.profilerPort)
	if err != nil {
		return err
	}
	defer stopProfiler()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := cmd.app.Config
	bus := startPipeline(ctx, cfg)

	buffer := tui.NewNotificationBuffer()
	buffer.Attach(bus)

	if cmd.demo {
		go runDemo(ctx, bus, cmd.demoInterval, logging.Component("demo"))
	}

	model := tui.New(tui.Options{
		Store:      notify.NewStore(notify.WithLogger(logging.Component("notify"))),
		Buffer:     buffer,
		Settings:   cmd.app.Settings(ctx),
		Theme:      cfg.TUI.Theme,
		PanelWidth: cfg.TUI.PanelWidth,
		ToastTTL:   cfg.Notifications.ToastTTL,
		MaxToasts:  cfg.Notifications.MaxToasts,
		Build:      cmd.app.Build,
		Logger:     logging.Component("tui"),
	})

	if err := tui.Run(ctx, model, cfg.TUI.MouseEnabled); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// startProfiler serves pprof when port is positive. The returned function
// shuts it down.
func startProfiler(ctx context.Context, port int) (func(), error) {
	if port <= 0 {
		return func() {}, nil
	}

	profServer := profiler.New(port)
	if err := profServer.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	log.Info().
		Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
		Msg("profiler endpoint available")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := profServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown profiler server")
		}
	}, nil
}
