package voice

import (
	"fmt"
	"strings"
)

// Intent is a recognized voice command.
type Intent string

const (
	IntentNavigate        Intent = "navigate"
	IntentTextLarger      Intent = "text-larger"
	IntentTextSmaller     Intent = "text-smaller"
	IntentContrastOn      Intent = "contrast-on"
	IntentContrastOff     Intent = "contrast-off"
	IntentScreenReaderOn  Intent = "screen-reader-on"
	IntentScreenReaderOff Intent = "screen-reader-off"
	IntentResetSettings   Intent = "reset-settings"
	IntentHelp            Intent = "help"
)

// DefaultDestinations are the navigable pages.
var DefaultDestinations = []string{
	"home",
	"dashboard",
	"products",
	"cart",
	"orders",
	"inquiries",
	"profile",
	"settings",
	"notifications",
	"help center",
}

var navigationVerbs = []string{"go to", "navigate to", "take me to", "open", "show"}

// Accessibility receives the settings commands. The text size methods
// return false when already at the bound.
type Accessibility interface {
	IncreaseTextSize() bool
	DecreaseTextSize() bool
	SetHighContrast(on bool)
	SetScreenReader(on bool)
	Reset()
}

// Match describes a dispatched command.
type Match struct {
	Intent       Intent `json:"intent"`
	Destination  string `json:"destination,omitempty"`
	Confirmation string `json:"confirmation"`
	Transcript   string `json:"transcript"`
}

// CommanderConfig wires a Commander to the application.
type CommanderConfig struct {
	Navigate     func(destination string)
	Settings     Accessibility
	Help         func()
	Speaker      Sayer
	Destinations []string
}

// CommandHelp documents one intent for the help listing.
type CommandHelp struct {
	Intent      Intent
	Description string
	Examples    []string
}

type rule struct {
	intent   Intent
	phrases  []string
	help     string
	dispatch func(c *Commander) string
}

// Commander maps transcripts to application actions. Rules are evaluated
// in a fixed order and the first match wins; unmatched transcripts are
// ignored silently.
type Commander struct {
	cfg   CommanderConfig
	dests []string
	rules []rule
}

// NewCommander builds a Commander. Destinations default to
// DefaultDestinations.
func NewCommander(cfg CommanderConfig) *Commander {
	dests := cfg.Destinations
	if len(dests) == 0 {
		dests = DefaultDestinations
	}
	c := &Commander{cfg: cfg, dests: dests}
	c.rules = []rule{
		{
			intent:  IntentTextLarger,
			phrases: []string{"increase text", "bigger text", "larger text", "text bigger", "text larger", "increase font", "zoom in"},
			help:    "Make text larger",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings == nil || !c.cfg.Settings.IncreaseTextSize() {
					return "Already at maximum text size"
				}
				return "Text size increased"
			},
		},
		{
			intent:  IntentTextSmaller,
			phrases: []string{"decrease text", "smaller text", "text smaller", "decrease font", "zoom out"},
			help:    "Make text smaller",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings == nil || !c.cfg.Settings.DecreaseTextSize() {
					return "Already at minimum text size"
				}
				return "Text size decreased"
			},
		},
		{
			intent:  IntentContrastOn,
			phrases: []string{"enable high contrast", "turn on high contrast", "high contrast on"},
			help:    "Turn high contrast on",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings != nil {
					c.cfg.Settings.SetHighContrast(true)
				}
				return "High contrast enabled"
			},
		},
		{
			intent:  IntentContrastOff,
			phrases: []string{"disable high contrast", "turn off high contrast", "high contrast off"},
			help:    "Turn high contrast off",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings != nil {
					c.cfg.Settings.SetHighContrast(false)
				}
				return "High contrast disabled"
			},
		},
		{
			intent:  IntentScreenReaderOn,
			phrases: []string{"enable screen reader", "turn on screen reader", "screen reader on"},
			help:    "Turn the screen reader on",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings != nil {
					c.cfg.Settings.SetScreenReader(true)
				}
				return "Screen reader enabled"
			},
		},
		{
			intent:  IntentScreenReaderOff,
			phrases: []string{"disable screen reader", "turn off screen reader", "screen reader off"},
			help:    "Turn the screen reader off",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings != nil {
					c.cfg.Settings.SetScreenReader(false)
				}
				return "Screen reader disabled"
			},
		},
		{
			intent:  IntentResetSettings,
			phrases: []string{"reset settings", "reset all", "restore defaults"},
			help:    "Reset accessibility settings",
			dispatch: func(c *Commander) string {
				if c.cfg.Settings != nil {
					c.cfg.Settings.Reset()
				}
				return "All settings have been reset"
			},
		},
		{
			intent:  IntentHelp,
			phrases: []string{"help", "what can i say", "list commands", "show commands"},
			help:    "List available commands",
			dispatch: func(c *Commander) string {
				if c.cfg.Help != nil {
					c.cfg.Help()
				}
				return "You can say go to followed by a page, bigger text, smaller text, high contrast on or off, screen reader on or off, or reset settings"
			},
		},
	}
	return c
}

// Handle dispatches transcript. It returns false, without side effects,
// when nothing matched.
func (c *Commander) Handle(transcript string) (Match, bool) {
	t := Normalize(transcript)
	if t == "" {
		return Match{}, false
	}

	if dest, ok := c.matchDestination(t); ok {
		if c.cfg.Navigate != nil {
			c.cfg.Navigate(dest)
		}
		return c.confirm(Match{
			Intent:       IntentNavigate,
			Destination:  dest,
			Confirmation: fmt.Sprintf("Opening %s", dest),
			Transcript:   t,
		}), true
	}

	for _, r := range c.rules {
		if !containsAny(t, r.phrases) {
			continue
		}
		return c.confirm(Match{
			Intent:       r.intent,
			Confirmation: r.dispatch(c),
			Transcript:   t,
		}), true
	}

	return Match{}, false
}

func (c *Commander) matchDestination(t string) (string, bool) {
	for _, verb := range navigationVerbs {
		for _, dest := range c.dests {
			if strings.Contains(t, verb+" "+dest) || strings.Contains(t, verb+" the "+dest) {
				return dest, true
			}
		}
	}
	return "", false
}

func (c *Commander) confirm(m Match) Match {
	if c.cfg.Speaker != nil {
		c.cfg.Speaker.Say(m.Confirmation)
	}
	return m
}

// Commands returns the help table in evaluation order.
func (c *Commander) Commands() []CommandHelp {
	out := make([]CommandHelp, 0, len(c.rules)+1)

	examples := make([]string, 0, len(c.dests))
	for _, d := range c.dests {
		examples = append(examples, "go to "+d)
	}
	out = append(out, CommandHelp{
		Intent:      IntentNavigate,
		Description: "Open a page (go to, open, show, navigate to)",
		Examples:    examples,
	})

	for _, r := range c.rules {
		out = append(out, CommandHelp{
			Intent:      r.intent,
			Description: r.help,
			Examples:    r.phrases,
		})
	}
	return out
}

// HelpMarkdown renders Commands as a markdown table.
func (c *Commander) HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Voice commands\n\n")
	b.WriteString("| Command | Say |\n|---|---|\n")
	for _, h := range c.Commands() {
		quoted := make([]string, len(h.Examples))
		for i, e := range h.Examples {
			quoted[i] = "`" + e + "`"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", h.Description, strings.Join(quoted, ", "))
	}
	return b.String()
}
