package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/core/styles"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *notify.Store) {
	t.Helper()
	t.Cleanup(func() { styles.SetTheme(styles.ThemeFor(styles.ThemeDefault, false)) })

	clock := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store := notify.NewStore(notify.WithClock(func() time.Time { return clock }))
	m := New(Options{Store: store, Theme: styles.ThemeDefault, Logger: zerolog.Nop()})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestModel_TogglePanel(t *testing.T) {
	m, _ := newTestModel(t)

	assert.False(t, m.Panel().IsOpen())
	press(m, runeKey("n"))
	assert.True(t, m.Panel().IsOpen())
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Panel().IsOpen())
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Panel().IsOpen())
}

func TestModel_ClickFollowsActionAndMarksRead(t *testing.T) {
	m, store := newTestModel(t)
	store.Add("plain", "no action", notify.KindInfo, nil)
	id := store.Add("New Order", "o-1", notify.KindSuccess, &notify.Action{Label: "View order", Target: "orders"})

	press(m, runeKey("n"), tea.KeyMsg{Type: tea.KeyEnter})

	n, ok := store.Get(id)
	require.True(t, ok)
	assert.True(t, n.Read)
	assert.Equal(t, "orders", m.Location())
	assert.Equal(t, 1, store.UnreadCount())
	assert.Equal(t, id, m.Panel().LastInteracted())
}

func TestModel_CursorAndDismiss(t *testing.T) {
	m, store := newTestModel(t)
	oldest := store.Add("a", "", notify.KindInfo, nil)
	middle := store.Add("b", "", notify.KindInfo, nil)
	store.Add("c", "", notify.KindInfo, nil)

	press(m, runeKey("n"), runeKey("j"), runeKey("j"), runeKey("j"))
	assert.Equal(t, 2, m.cursor, "cursor stops at the last item")

	press(m, runeKey("x"))
	_, ok := store.Get(oldest)
	assert.False(t, ok)
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, 3-1, store.UnreadCount(), "dismiss never marks read")

	press(m, runeKey("k"), runeKey("k"))
	assert.Equal(t, 0, m.cursor)

	press(m, runeKey("j"), runeKey("x"))
	_, ok = store.Get(middle)
	assert.False(t, ok)
	assert.Equal(t, "home", m.Location(), "dismiss does not navigate")
}

func TestModel_MarkAllAndClear(t *testing.T) {
	m, store := newTestModel(t)
	store.Add("a", "", notify.KindInfo, nil)
	store.Add("b", "", notify.KindInfo, nil)

	press(m, runeKey("a"))
	assert.Equal(t, 2, store.UnreadCount(), "ignored while closed")

	press(m, runeKey("n"), runeKey("a"))
	assert.Equal(t, 0, store.UnreadCount())

	press(m, runeKey("D"))
	assert.Empty(t, store.List())
	assert.Equal(t, 0, m.cursor)
}

func TestModel_MouseOutsideDismisses(t *testing.T) {
	m, store := newTestModel(t)
	store.Add("a", "message", notify.KindInfo, nil)
	press(m, runeKey("n"))

	r := m.panelRect()
	require.Greater(t, r.w, 0)

	press(m, tea.MouseMsg{X: r.x + 1, Y: r.y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.Panel().IsOpen(), "press inside keeps the panel open")

	press(m, tea.MouseMsg{X: r.x + r.w + 5, Y: r.y + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.True(t, m.Panel().IsOpen(), "release is ignored")

	press(m, tea.MouseMsg{X: r.x + r.w + 5, Y: r.y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.Panel().IsOpen())

	press(m, tea.MouseMsg{X: r.x + r.w + 5, Y: r.y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.Panel().IsOpen(), "outside press on a closed panel is a no-op")
}

func TestModel_DrainAddsAndToasts(t *testing.T) {
	m, store := newTestModel(t)

	m.buffer.Push(eventbus.NotificationPublishedPayload{Title: "Low Stock", Message: "Candle", Kind: notify.KindWarning})
	m.buffer.Push(eventbus.NotificationPublishedPayload{Title: "New Inquiry", Kind: notify.KindActivity})

	_, cmd := m.Update(drainNotificationsMsg{})
	assert.NotNil(t, cmd)

	items := store.List()
	require.Len(t, items, 2)
	assert.Equal(t, "New Inquiry", items[0].Title)
	assert.Len(t, m.toasts.Toasts(), 2)
	assert.True(t, m.toasts.Ticking())

	for range int(defaultToastTTL/toastTickInterval) + 1 {
		m.Update(toastTickMsg(time.Now()))
	}
	assert.False(t, m.toasts.HasToasts())
	assert.False(t, m.toasts.Ticking())
	assert.Len(t, store.List(), 2, "expired toasts stay in the feed")
}

func TestModel_ViewShowsBadge(t *testing.T) {
	m, store := newTestModel(t)
	store.Add("New Order", "o-1", notify.KindSuccess, &notify.Action{Label: "View order", Target: "orders"})

	out := m.View()
	assert.Contains(t, out, styles.IconBell+" 1")
	assert.Contains(t, out, "Press n")

	press(m, runeKey("n"))
	out = m.View()
	assert.Contains(t, out, "New Order")
	assert.Contains(t, out, "View order")
	assert.Contains(t, out, "1 unread notification")
	assert.LessOrEqual(t, lipgloss.Width(m.renderPanel()), 56+2)

	press(m, runeKey("D"))
	assert.Contains(t, m.View(), "all caught up")
}

type memSettings struct{ saved []a11y.Settings }

func (s *memSettings) Load(_ context.Context, _ string) (a11y.Settings, error) {
	return a11y.Defaults(), nil
}

func (s *memSettings) Save(_ context.Context, _ string, v a11y.Settings) error {
	s.saved = append(s.saved, v)
	return nil
}

func TestModel_ContrastPersists(t *testing.T) {
	t.Cleanup(func() { styles.SetTheme(styles.ThemeFor(styles.ThemeDefault, false)) })

	store := &memSettings{}
	ctrl := a11y.NewController(store, "default", a11y.Defaults(), zerolog.Nop())
	m := New(Options{Settings: ctrl, Theme: styles.ThemeDefault})

	press(m, runeKey("c"))
	assert.True(t, ctrl.Settings().HighContrast)
	require.Len(t, store.saved, 1)
	assert.True(t, store.saved[0].HighContrast)
	assert.Equal(t, lipgloss.Color("#000000"), styles.CurrentPalette.Background)

	press(m, runeKey("c"))
	assert.False(t, ctrl.Settings().HighContrast)
}

func TestModel_ScreenReaderBadge(t *testing.T) {
	ctrl := a11y.NewController(&memSettings{}, "default", a11y.Settings{ScreenReader: true}, zerolog.Nop())
	m := New(Options{Settings: ctrl})
	m.store.Add("a", "", notify.KindInfo, nil)
	m.store.Add("b", "", notify.KindInfo, nil)

	assert.Contains(t, m.View(), "2 unread notifications")
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runeKey("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_DrainKeepsSelection(t *testing.T) {
	m, store := newTestModel(t)
	store.Add("a", "", notify.KindInfo, nil)
	picked := store.Add("b", "", notify.KindInfo, nil)
	store.Add("c", "", notify.KindInfo, nil)

	press(m, runeKey("n"), runeKey("j"))
	sel, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, picked, sel.ID)

	m.buffer.Push(eventbus.NotificationPublishedPayload{Title: "New Order", Kind: notify.KindSuccess})
	m.buffer.Push(eventbus.NotificationPublishedPayload{Title: "Low Stock", Kind: notify.KindWarning})
	m.Update(drainNotificationsMsg{})

	require.Len(t, store.List(), 5)
	assert.Equal(t, 3, m.cursor)
	sel, ok = m.selected()
	require.True(t, ok)
	assert.Equal(t, picked, sel.ID, "drained items must not move the selection")

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	n, ok := store.Get(picked)
	require.True(t, ok)
	assert.True(t, n.Read, "enter acts on the item that was selected before the drain")
}
