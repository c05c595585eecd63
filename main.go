package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/commands"
	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/styles"
	"github.com/handsandhope/hope/internal/data/db"
	"github.com/handsandhope/hope/internal/tui"
	"github.com/handsandhope/hope/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func buildInfo() tui.BuildInfo {
	v, c, d := version, commit, date

	// ldflags aren't set by `go install module@version`, so fall back to
	// the module version and VCS metadata Go records itself.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	if len(c) > 7 {
		c = c[:7]
	}
	return tui.BuildInfo{Version: v, Commit: c, Date: d}
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		hopeApp   = &commands.App{}
		database  *db.DB
		build     = buildInfo()
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "hope",
		Usage:     "Notification center and voice navigation for the Hands & Hope marketplace",
		UsageText: "hope [global options] command [command options]",
		Description: `Hope shows marketplace activity (orders, inquiries, stock alerts) as
notifications with toasts and an unread badge, and lets users move around
and change accessibility settings by voice.

Run 'hope' with no arguments to open the interactive notification center.
Run 'hope serve' to expose notifications over HTTP.
Run 'hope voice' to dispatch spoken commands.`,
		Version: fmt.Sprintf("%s (%s) %s", build.Version, build.Commit, build.Date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("HOPE_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/logs/hope.log)",
				Sources:     cli.EnvVars("HOPE_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("HOPE_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("HOPE_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout belongs to the TUI and JSON output.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "logs", "hope.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				// Let 'config validate' report the problem instead of failing here.
				if c.Args().First() != "config" {
					return ctx, fmt.Errorf("load config: %w", err)
				}
				flags.ConfigErr = err
				defaults := config.DefaultConfig()
				defaults.DataDir = flags.DataDir
				cfg = &defaults
			}
			flags.Config = cfg

			// Validation ensures the theme name is valid.
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			database, err = commands.OpenDatabase(cfg.DatabaseDir(), db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
				PingAttempts: db.DefaultOpenOptions().PingAttempts,
				Logger:       logging.Component("db"),
			}, logging.Component("db"))
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*hopeApp = *commands.NewApp(cfg, database, build)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, hopeApp)

	app = commands.NewServeCmd(flags, hopeApp).Register(app)
	app = commands.NewVoiceCmd(flags, hopeApp).Register(app)
	app = commands.NewPrefsCmd(flags, hopeApp).Register(app)
	app = commands.NewEventsCmd(flags, hopeApp).Register(app)
	app = commands.NewDBCmd(flags, hopeApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDocCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'hope --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
