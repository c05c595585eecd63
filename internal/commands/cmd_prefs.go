package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/styles"
	"github.com/handsandhope/hope/internal/core/validate"
	"github.com/handsandhope/hope/pkg/iojson"
)

type PrefsCmd struct {
	flags *Flags
	app   *App

	profile string
	json    bool
	all     bool
}

// NewPrefsCmd creates a new prefs command
func NewPrefsCmd(flags *Flags, app *App) *PrefsCmd {
	return &PrefsCmd{flags: flags, app: app}
}

// Register adds the prefs command to the application
func (cmd *PrefsCmd) Register(app *cli.Command) *cli.Command {
	profileFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "profile",
			Aliases:     []string{"p"},
			Usage:       "preference profile (defaults to profile from config)",
			Destination: &cmd.profile,
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "prefs",
		Usage: "Show and change accessibility preferences",
		Commands: []*cli.Command{
			{
				Name:          "show",
				Before:        cmd.checkProfile,
				Usage:         "Print the preferences of a profile",
				UsageText:     "hope prefs show [--profile name] [--json]",
				ShellComplete: ProfileCompleter(cmd.app),
				Flags: []cli.Flag{
					profileFlag(),
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.json,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "reset",
				Before:    cmd.checkProfile,
				Usage:     "Restore default display preferences",
				UsageText: "hope prefs reset [--profile name] [--all]",
				Description: `Restores text size, contrast and screen reader defaults. Voice navigation
and the answer to the voice prompt are kept unless --all is given, in which
case the profile is deleted and the prompt is asked again.`,
				ShellComplete: ProfileCompleter(cmd.app),
				Flags: []cli.Flag{
					profileFlag(),
					&cli.BoolFlag{
						Name:        "all",
						Usage:       "delete the profile entirely",
						Destination: &cmd.all,
					},
				},
				Action: cmd.runReset,
			},
			{
				Name:          "edit",
				Before:        cmd.checkProfile,
				Usage:         "Edit preferences interactively",
				UsageText:     "hope prefs edit [--profile name]",
				ShellComplete: ProfileCompleter(cmd.app),
				Flags:         []cli.Flag{profileFlag()},
				Action:        cmd.runEdit,
			},
			{
				Name:   "profiles",
				Usage:  "List saved profiles",
				Action: cmd.runProfiles,
			},
		},
	})
	return app
}

func (cmd *PrefsCmd) profileName() string {
	if cmd.profile != "" {
		return cmd.profile
	}
	return cmd.app.Config.Profile
}

func (cmd *PrefsCmd) checkProfile(ctx context.Context, _ *cli.Command) (context.Context, error) {
	return ctx, validate.ProfileNameField("profile", cmd.profileName())
}

func (cmd *PrefsCmd) controller(ctx context.Context) *a11y.Controller {
	return a11y.Load(ctx, cmd.app.Prefs, cmd.profileName(), logging.Component("a11y"))
}

func (cmd *PrefsCmd) runShow(ctx context.Context, c *cli.Command) error {
	s := cmd.controller(ctx).Settings()
	w := c.Root().Writer

	if cmd.json {
		return iojson.WriteWith(w, c.Root().ErrWriter, struct {
			Profile string `json:"profile"`
			a11y.Settings
		}{cmd.profileName(), s})
	}

	p := newPrinter(w)
	printSettings(p, cmd.profileName(), s)

	answers, err := cmd.app.Prompts.Recent(ctx, cmd.profileName(), 1)
	if err != nil {
		return fmt.Errorf("load prompt history: %w", err)
	}
	if len(answers) > 0 {
		a := answers[0]
		p.KV("Last prompt answer", fmt.Sprintf("%s (%q) at %s", a.Outcome, a.Transcript, a.AnsweredAt.Format(time.DateTime)))
	}
	return nil
}

func printSettings(p *printer, profile string, s a11y.Settings) {
	p.Printf("%s", styles.CommandHeaderStyle.Render("Profile "+profile))
	p.KV("Text size", s.TextSize)
	p.KV("High contrast", onOff(s.HighContrast))
	p.KV("Screen reader", onOff(s.ScreenReader))
	p.KV("Voice navigation", onOff(s.VoiceNavigation))
	p.KV("Voice prompt answered", s.VoicePromptAnswered)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (cmd *PrefsCmd) runReset(ctx context.Context, c *cli.Command) error {
	p := newPrinter(c.Root().Writer)
	profile := cmd.profileName()

	if cmd.all {
		if err := cmd.app.Prefs.Delete(ctx, profile); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		p.Successf("Profile %q deleted", profile)
		return nil
	}

	cmd.controller(ctx).Reset()
	p.Successf("All settings have been reset")
	return nil
}

func (cmd *PrefsCmd) runProfiles(ctx context.Context, c *cli.Command) error {
	profiles, err := cmd.app.Prefs.Profiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	for _, name := range profiles {
		_, _ = fmt.Fprintln(c.Root().Writer, name)
	}
	return nil
}

func (cmd *PrefsCmd) runEdit(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("prefs edit needs an interactive terminal; use 'hope prefs reset' or edit via voice")
	}

	ctrl := cmd.controller(ctx)
	form := newPrefsForm(ctrl.Settings())
	if err := form.form.WithTheme(styles.FormTheme()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	next, err := form.settings()
	if err != nil {
		return err
	}
	applySettings(ctrl, next)

	printSettings(newPrinter(c.Root().Writer), cmd.profileName(), ctrl.Settings())
	return nil
}

// prefsForm binds huh fields to a copy of the settings.
type prefsForm struct {
	form *huh.Form

	textSize        string
	highContrast    bool
	screenReader    bool
	voiceNavigation bool
	base            a11y.Settings
}

func newPrefsForm(s a11y.Settings) *prefsForm {
	f := &prefsForm{
		textSize:        s.TextSize.String(),
		highContrast:    s.HighContrast,
		screenReader:    s.ScreenReader,
		voiceNavigation: s.VoiceNavigation,
		base:            s,
	}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Text size").
				Options(huh.NewOptions(a11y.TextSizeNames()...)...).
				Value(&f.textSize),
			huh.NewConfirm().
				Title("High contrast").
				Value(&f.highContrast),
			huh.NewConfirm().
				Title("Screen reader").
				Description("Announce the notification badge as text").
				Value(&f.screenReader),
			huh.NewConfirm().
				Title("Voice navigation").
				Description("Listen for spoken commands in 'hope voice'").
				Value(&f.voiceNavigation),
		),
	)
	return f
}

func (f *prefsForm) settings() (a11y.Settings, error) {
	size, err := a11y.ParseTextSize(f.textSize)
	if err != nil {
		return a11y.Settings{}, err
	}
	s := f.base
	s.TextSize = size
	s.HighContrast = f.highContrast
	s.ScreenReader = f.screenReader
	s.VoiceNavigation = f.voiceNavigation
	// Choosing a voice setting here counts as answering the prompt.
	if s.VoiceNavigation != f.base.VoiceNavigation {
		s.VoicePromptAnswered = true
	}
	return s, nil
}

func applySettings(c *a11y.Controller, s a11y.Settings) {
	c.SetTextSize(s.TextSize)
	c.SetHighContrast(s.HighContrast)
	c.SetScreenReader(s.ScreenReader)
	c.SetVoiceNavigation(s.VoiceNavigation)
	if s.VoicePromptAnswered {
		c.MarkPromptAnswered()
	}
}
