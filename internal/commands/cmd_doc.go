package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/eventbus"
)

type DocCmd struct {
	flags *Flags
}

func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Reference documentation",
		Description: `Prints reference material for integrators.

Use 'hope doc events' to see the marketplace event format.
Use 'hope doc config' to see a config file with every default filled in.`,
		Commands: []*cli.Command{
			{
				Name:   "events",
				Usage:  "Show the marketplace event envelope and example payloads",
				Action: cmd.runEvents,
			},
			{
				Name:   "config",
				Usage:  "Print the default configuration as YAML",
				Action: cmd.runConfig,
			},
		},
	})
	return app
}

func (cmd *DocCmd) runEvents(_ context.Context, c *cli.Command) error {
	return printEventsGuide(c.Root().Writer)
}

func printEventsGuide(w io.Writer) error {
	_, _ = fmt.Fprint(w, `# Marketplace events

Events reach hope as JSON envelopes, either POSTed to /api/events or
written to the configured kafka topic:

    {"type": "<event name>", "payload": { ... }}

Events whose names match a notifications.events pattern become
notifications. Examples:
`)

	for _, ev := range demoEvents {
		bits, err := json.MarshalIndent(eventbus.RawEvent{Type: string(ev.event), Payload: mustJSON(ev.payload)}, "    ", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "\n## %s\n\n    %s\n", ev.event, bits)
	}
	return nil
}

func mustJSON(v any) json.RawMessage {
	bits, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bits
}

func (cmd *DocCmd) runConfig(_ context.Context, c *cli.Command) error {
	cfg := config.DefaultConfig()
	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
