package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/integration/kafka"
	"github.com/handsandhope/hope/pkg/iojson"
)

type EventsCmd struct {
	flags *Flags
	app   *App

	reader   iojson.FileReader[eventbus.RawEvent]
	url      string
	useKafka bool
	json     bool

	// client and newProducer are overridden in tests.
	client      *http.Client
	newProducer func() eventPublisher
}

type eventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event, payload any) error
	Close() error
}

// NewEventsCmd creates a new events command
func NewEventsCmd(flags *Flags, app *App) *EventsCmd {
	cmd := &EventsCmd{
		flags:  flags,
		app:    app,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	cmd.newProducer = func() eventPublisher {
		return kafka.NewProducer(kafka.NewWriter(cmd.app.Config.Kafka))
	}
	return cmd
}

// Register adds the events command to the application
func (cmd *EventsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "events",
		Usage: "Inspect and publish marketplace events",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List known events and whether they become notifications",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.json,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "publish",
				Usage:     "Publish an event to a running server or to kafka",
				UsageText: `echo '{"type":"order.placed","payload":{"order_id":"1"}}' | hope events publish`,
				Flags: []cli.Flag{
					cmd.reader.Flag(),
					&cli.StringFlag{
						Name:        "url",
						Usage:       "server base URL (defaults to http://<server.addr>)",
						Destination: &cmd.url,
					},
					&cli.BoolFlag{
						Name:        "kafka",
						Usage:       "write to the configured kafka topic instead of the HTTP API",
						Destination: &cmd.useKafka,
					},
				},
				Action: cmd.runPublish,
			},
		},
	})
	return app
}

type eventInfo struct {
	Name   string `json:"name"`
	Routed bool   `json:"routed"`
}

func (cmd *EventsCmd) runList(_ context.Context, c *cli.Command) error {
	router := eventbus.NewNotificationRouter(nil, cmd.app.Config.Notifications.Events, logging.Component("router"))

	names := slices.Sorted(maps.Keys(eventbus.Events))
	infos := make([]eventInfo, 0, len(names))
	for _, e := range names {
		if e == eventbus.EventNotificationPublished {
			continue
		}
		infos = append(infos, eventInfo{Name: string(e), Routed: router.Allowed(e)})
	}

	w := c.Root().Writer
	if cmd.json {
		return iojson.WriteWith(w, c.Root().ErrWriter, infos)
	}

	p := newPrinter(w)
	for _, info := range infos {
		p.KV(info.Name, map[bool]string{true: "notifies", false: "ignored"}[info.Routed])
	}
	return nil
}

func (cmd *EventsCmd) runPublish(ctx context.Context, c *cli.Command) error {
	raw, err := cmd.reader.Read()
	if err != nil {
		return err
	}
	if err := validator.New().Struct(raw); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	event, payload, err := raw.Decode()
	if err != nil {
		return err
	}

	p := newPrinter(c.Root().Writer)
	if cmd.useKafka {
		if !cmd.app.Config.Kafka.Enabled() {
			return fmt.Errorf("kafka.brokers is not configured")
		}
		prod := cmd.newProducer()
		defer func() { _ = prod.Close() }()
		if err := prod.Publish(ctx, event, payload); err != nil {
			return fmt.Errorf("publish to kafka: %w", err)
		}
		p.Successf("Published %s to %s", event, cmd.app.Config.Kafka.Topic)
		return nil
	}

	if err := cmd.post(ctx, raw); err != nil {
		return err
	}
	p.Successf("Published %s", event)
	return nil
}

func (cmd *EventsCmd) post(ctx context.Context, raw eventbus.RawEvent) error {
	base := cmd.url
	if base == "" {
		base = "http://" + cmd.app.Config.Server.Addr
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cmd.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
