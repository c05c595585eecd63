package commands

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "hope config validate [options]",
				Description: "Validates the configuration file, checking event patterns, the listen address, kafka settings and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []string                   `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) report() validationReport {
	var r validationReport

	err := cmd.flags.ConfigErr
	if err == nil && cmd.flags.Config != nil {
		err = cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
		r.Warnings = cmd.flags.Config.Warnings()
	}
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				r.Errors = append(r.Errors, line)
			}
		}
	}
	r.Valid = len(r.Errors) == 0
	return r
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	r := cmd.report()

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, r); err != nil {
			return err
		}
		if !r.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	p := newPrinter(c.Root().Writer)
	for _, warn := range r.Warnings {
		p.Warnf("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}
	for _, msg := range r.Errors {
		p.Errorf("%s", msg)
	}

	p.Printf("")
	if r.Valid {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found", len(r.Errors))
	return cli.Exit("", 1)
}
