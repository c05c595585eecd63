package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/api"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/metrics"
)

type ServeCmd struct {
	flags *Flags
	app   *App

	addr         string
	demo         bool
	demoInterval time.Duration
	profilerPort int
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the notification HTTP API",
		UsageText: "hope serve [--addr host:port]",
		Description: `Serves the notification center over HTTP.

Notifications routed from marketplace events (posted to /api/events or
consumed from kafka) are added to an in-memory store. Clients read and
mutate the store through /api/notifications and can follow the unread
count over the /api/ws/badge websocket. Prometheus metrics are served on
/metrics unless server.metrics is false.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("HOPE_ADDR"),
				Destination: &cmd.addr,
			},
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
				Usage:       "enable pprof HTTP endpoint on specified port",
				Sources:     cli.EnvVars("HOPE_PROFILER_PORT"),
				Destination: &cmd.profilerPort,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopProfiler, err := startProfiler(ctx, cmd.profilerPort)
	if err != nil {
		return err
	}
	defer stopProfiler()

	cfg := cmd.app.Config
	store := notify.NewStore(notify.WithLogger(logging.Component("notify")))

	bus := startPipeline(ctx, cfg)
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		store.Add(p.Title, p.Message, p.Kind, p.Action)
	})

	if cmd.demo {
		go runDemo(ctx, bus, cmd.demoInterval, logging.Component("demo"))
	}

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	log := logging.Component("api")
	h := api.NewHandler(store, bus, validator.New(), log)
	if cfg.Server.Metrics {
		m := metrics.New()
		m.ObserveBus(bus)
		defer m.ObserveStore(store)()
		h.WithMetrics(m)
	}
	return api.NewServer(addr, h, cfg.Server.ShutdownTimeout, log).Run(ctx)
}
