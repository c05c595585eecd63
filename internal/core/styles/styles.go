// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/handsandhope/hope/internal/core/notify"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	KeyStyle           lipgloss.Style
	ValueStyle         lipgloss.Style

	// Notification center.
	PanelStyle          lipgloss.Style
	PanelTitleStyle     lipgloss.Style
	BadgeStyle          lipgloss.Style
	BadgeEmptyStyle     lipgloss.Style
	SelectedBorderStyle lipgloss.Style
	ItemTitleStyle      lipgloss.Style
	ItemUnreadStyle     lipgloss.Style
	ItemMessageStyle    lipgloss.Style
	ItemTimeStyle       lipgloss.Style
	ItemActionStyle     lipgloss.Style
	EmptyStyle          lipgloss.Style
	HelpStyle           lipgloss.Style
	StatusStyle         lipgloss.Style

	// Toasts, keyed by kind in ToastStyle.
	toastStyles map[notify.Kind]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	CommandStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Muted)
	KeyStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	ValueStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	PanelTitleStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	BadgeStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Error).
		Bold(true).
		Padding(0, 1)
	BadgeEmptyStyle = lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1)
	SelectedBorderStyle = lipgloss.NewStyle().Foreground(p.Primary)
	ItemTitleStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	ItemUnreadStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	ItemMessageStyle = lipgloss.NewStyle().Foreground(p.Muted)
	ItemTimeStyle = lipgloss.NewStyle().Foreground(p.Muted)
	ItemActionStyle = lipgloss.NewStyle().Foreground(p.Secondary).Underline(true)
	EmptyStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)
	StatusStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	toast := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Foreground(p.Foreground).
			Padding(0, 1)
	}
	toastStyles = map[notify.Kind]lipgloss.Style{
		notify.KindInfo:     toast(p.Primary),
		notify.KindSuccess:  toast(p.Success),
		notify.KindWarning:  toast(p.Warning),
		notify.KindError:    toast(p.Error),
		notify.KindActivity: toast(p.Secondary),
	}
}

// ToastStyle returns the toast style for kind.
func ToastStyle(kind notify.Kind) lipgloss.Style {
	if s, ok := toastStyles[kind]; ok {
		return s
	}
	return toastStyles[notify.KindInfo]
}

// KindIcon returns the icon shown next to a notification of kind.
func KindIcon(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return IconSuccess
	case notify.KindWarning:
		return IconWarning
	case notify.KindError:
		return IconError
	case notify.KindActivity:
		return IconActivity
	default:
		return IconNotifyInfo
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[ThemeDefault])
}

func hexPtr(c lipgloss.Color) *string {
	s := string(c)
	if s == "" {
		return nil
	}
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(CurrentPalette.Foreground)
	primary := hexPtr(CurrentPalette.Primary)
	secondary := hexPtr(CurrentPalette.Secondary)
	muted := hexPtr(CurrentPalette.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H1.BackgroundColor = nil
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
