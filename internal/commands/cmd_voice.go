package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/styles"
	"github.com/handsandhope/hope/internal/core/voice"
	"github.com/handsandhope/hope/internal/integration/speech"
)

type VoiceCmd struct {
	flags *Flags
	app   *App

	json bool
	raw  bool
}

// NewVoiceCmd creates a new voice command
func NewVoiceCmd(flags *Flags, app *App) *VoiceCmd {
	return &VoiceCmd{flags: flags, app: app}
}

// Register adds the voice command to the application
func (cmd *VoiceCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "voice",
		Usage:     "Listen for voice commands",
		UsageText: "hope voice [--json] < transcripts",
		Description: `Reads one recognized utterance per line from stdin and dispatches it as a
voice command. A line of the form "!<code>" reports a recognizer error.

The first run for a profile asks whether voice navigation should be
enabled; answer "yes" or "no". Confirmations are spoken with
voice.tts_command when it is configured.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print one JSON object per dispatched command",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
		Commands: []*cli.Command{
			{
				Name:  "commands",
				Usage: "List the phrases voice navigation understands",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "raw",
						Usage:       "print markdown without rendering",
						Destination: &cmd.raw,
					},
				},
				Action: cmd.runCommands,
			},
		},
	})
	return app
}

func (cmd *VoiceCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	log := logging.Component("voice")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.Voice.RestartInitial
	b.MaxInterval = cfg.Voice.RestartMax
	b.MaxElapsedTime = 0

	synth := speech.NewCommandSynthesizer(cfg.Voice.TTSCommand, speech.WithSynthLogger(log))
	speaker := voice.NewSpeaker(synth, log)
	defer speaker.Stop()

	var in io.Reader = os.Stdin
	if r := c.Root().Reader; r != nil {
		in = r
	}

	runner := &voiceRunner{
		settings: cmd.app.Settings(ctx),
		prompts:  cmd.app.Prompts,
		profile:  cfg.Profile,
		speaker:  speaker,
		cooldown: cfg.Voice.Cooldown,
		backoff:  b,
		json:     cmd.json,
		out:      c.Root().Writer,
		errOut:   c.Root().ErrWriter,
		log:      log,
	}
	if err := runner.Run(ctx, speech.NewLineRecognizer(in)); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	return nil
}

func (cmd *VoiceCmd) runCommands(_ context.Context, c *cli.Command) error {
	md := voice.NewCommander(voice.CommanderConfig{}).HelpMarkdown()
	w := c.Root().Writer

	if cmd.raw {
		_, err := fmt.Fprint(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
