package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/data/db"
)

type DBCmd struct {
	flags *Flags
	app   *App

	steps int
}

// NewDBCmd creates a new db command
func NewDBCmd(flags *Flags, app *App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Maintain the preference database",
		Commands: []*cli.Command{
			{
				Name:      "rollback",
				Usage:     "Revert the newest schema migrations",
				UsageText: "hope db rollback [--steps n]",
				Description: `Reverts schema migrations so an older release of hope can open the
database. Preferences are kept. The next run of this release applies the
reverted migrations again.`,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Aliases:     []string{"n"},
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
				},
				Action: cmd.runRollback,
			},
		},
	})
	return app
}

func (cmd *DBCmd) runRollback(ctx context.Context, c *cli.Command) error {
	n := cmd.steps
	if err := db.MigrateDown(ctx, cmd.app.DB.Conn(), n, logging.Component("db")); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	newPrinter(c.Root().Writer).Successf("Reverted %d migration(s)", n)
	return nil
}
