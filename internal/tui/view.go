package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/core/styles"
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// View renders the header, the panel or home screen, toasts and help.
func (m *Model) View() string {
	open := m.panel.IsOpen()

	parts := []string{m.renderHeader()}
	if open {
		parts = append(parts, m.renderPanel())
	} else {
		parts = append(parts, m.renderHome())
	}
	if t := m.toastView.Place(m.width); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, styles.HelpStyle.Render(renderHelp(m.keys.shortHelp(open))))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// panelRect is the screen area of the open panel. It sits directly under
// the header at column zero.
func (m *Model) panelRect() rect {
	panel := m.renderPanel()
	return rect{
		x: 0,
		y: lipgloss.Height(m.renderHeader()),
		w: lipgloss.Width(panel),
		h: lipgloss.Height(panel),
	}
}

func (m *Model) renderHeader() string {
	title := styles.CommandHeaderStyle.Render("Hands & Hope")
	if m.build.Version != "" {
		title += styles.DividerStyle.Render(" " + m.build.Version)
	}
	loc := styles.StatusStyle.Render(" " + styles.IconDot + " " + m.location)
	return title + loc + "  " + m.renderBadge()
}

func (m *Model) renderBadge() string {
	unread := m.panel.Badge()
	if m.screenReader {
		return styles.BadgeEmptyStyle.Render(unreadSentence(unread))
	}
	label := fmt.Sprintf("%s %d", styles.IconBell, unread)
	if unread == 0 {
		return styles.BadgeEmptyStyle.Render(label)
	}
	return styles.BadgeStyle.Render(label)
}

func unreadSentence(n int) string {
	switch n {
	case 0:
		return "no unread notifications"
	case 1:
		return "1 unread notification"
	default:
		return fmt.Sprintf("%d unread notifications", n)
	}
}

func (m *Model) renderHome() string {
	return styles.EmptyStyle.Render("\nPress n to open notifications.\n")
}

func (m *Model) renderPanel() string {
	items := m.panel.Items()
	inner := m.panelWidth - 4

	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle.Render("Notifications"))
	b.WriteString(styles.DividerStyle.Render(" " + styles.IconDot + " " + unreadSentence(m.panel.Badge())))

	if len(items) == 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.EmptyStyle.Render("You're all caught up."))
		return styles.PanelStyle.Width(m.panelWidth).Render(b.String())
	}

	for i, n := range items {
		b.WriteString("\n\n")
		b.WriteString(renderItem(n, i == m.cursor, inner))
	}
	return styles.PanelStyle.Width(m.panelWidth).Render(b.String())
}

func renderItem(n notify.Notification, selected bool, width int) string {
	border := "  "
	if selected {
		border = styles.SelectedBorderStyle.Render("┃") + " "
	}

	marker := styles.IconRead
	titleStyle := styles.ItemTitleStyle
	if !n.Read {
		marker = styles.IconUnread
		titleStyle = styles.ItemUnreadStyle
	}

	line1 := fmt.Sprintf("%s %s %s %s",
		marker,
		styles.KindIcon(n.Kind),
		titleStyle.Render(truncate(n.Title, width-12)),
		styles.ItemTimeStyle.Render(n.CreatedAt.Format("15:04")),
	)
	lines := []string{border + line1}
	if n.Message != "" {
		lines = append(lines, border+styles.ItemMessageStyle.Render(truncate(n.Message, width-2)))
	}
	if n.HasAction() {
		lines = append(lines, border+styles.ItemActionStyle.Render(styles.IconAction+" "+n.Action.Label))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
