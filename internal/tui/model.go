// Package tui implements the interactive notification center.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/core/styles"
	"github.com/rs/zerolog"
)

type drainNotificationsMsg struct{}

// Options configures the notification center.
type Options struct {
	Store  *notify.Store
	Buffer *NotificationBuffer
	// Settings is optional; when set the contrast key persists through it
	// and the initial theme follows its high contrast flag.
	Settings   *a11y.Controller
	Theme      string
	PanelWidth int
	ToastTTL   time.Duration
	MaxToasts  int
	Build      BuildInfo
	Logger     zerolog.Logger
}

// Model is the bubbletea model wrapping a notify.Panel.
type Model struct {
	store     *notify.Store
	panel     *notify.Panel
	buffer    *NotificationBuffer
	toasts    *ToastController
	toastView *ToastView
	settings  *a11y.Controller
	keys      keyMap
	build     BuildInfo
	log       zerolog.Logger

	theme        string
	highContrast bool
	screenReader bool
	panelWidth   int
	width        int
	height       int
	cursor       int
	location     string
}

// New builds the model.
func New(opts Options) *Model {
	if opts.Store == nil {
		opts.Store = notify.NewStore()
	}
	if opts.Buffer == nil {
		opts.Buffer = NewNotificationBuffer()
	}
	if opts.PanelWidth <= 0 {
		opts.PanelWidth = 56
	}

	toasts := NewToastController(opts.ToastTTL, opts.MaxToasts)
	m := &Model{
		store:      opts.Store,
		buffer:     opts.Buffer,
		toasts:     toasts,
		toastView:  NewToastView(toasts),
		settings:   opts.Settings,
		keys:       defaultKeyMap(),
		build:      opts.Build,
		log:        opts.Logger,
		theme:      opts.Theme,
		panelWidth: opts.PanelWidth,
		location:   "home",
	}
	m.panel = notify.NewPanel(m.store, notify.NavigatorFunc(m.navigate))

	if m.settings != nil {
		s := m.settings.Settings()
		m.highContrast = s.HighContrast
		m.screenReader = s.ScreenReader
	}
	m.applyTheme()
	return m
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m *Model, mouse bool) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Panel exposes the underlying panel.
func (m *Model) Panel() *notify.Panel {
	return m.panel
}

// Location returns the page last navigated to by a notification action.
func (m *Model) Location() string {
	return m.location
}

func (m *Model) navigate(target string) {
	m.log.Debug().Str("target", target).Msg("navigate")
	m.location = target
}

func (m *Model) applyTheme() {
	styles.SetTheme(styles.ThemeFor(m.theme, m.highContrast))
}

// Init starts listening for buffered notifications.
func (m *Model) Init() tea.Cmd {
	return m.buffer.WaitForSignal()
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case drainNotificationsMsg:
		return m, m.drain()

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

// drain moves buffered notifications into the store. It is the only path
// by which asynchronous producers reach the store while the TUI runs.
func (m *Model) drain() tea.Cmd {
	sel, hasSel := m.selected()
	for _, p := range m.buffer.Drain() {
		id := m.store.Add(p.Title, p.Message, p.Kind, p.Action)
		if n, ok := m.store.Get(id); ok {
			m.toasts.Push(n)
		}
	}

	if hasSel {
		m.selectID(sel.ID)
	}

	cmds := []tea.Cmd{m.buffer.WaitForSignal()}
	if m.toasts.HasToasts() && !m.toasts.Ticking() {
		m.toasts.SetTicking(true)
		cmds = append(cmds, scheduleToastTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.panel.Toggle()
		m.clampCursor()
		return nil
	case key.Matches(msg, m.keys.Contrast):
		m.toggleContrast()
		return nil
	}

	if !m.panel.IsOpen() {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.panel.Close()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.panel.Items())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Open):
		if n, ok := m.selected(); ok {
			m.panel.Click(n.ID)
		}
	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.selected(); ok {
			m.panel.Dismiss(n.ID)
			m.toasts.Forget(n.ID)
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.ReadAll):
		m.panel.MarkAllRead()
	case key.Matches(msg, m.keys.ClearAll):
		m.panel.ClearAll()
		m.toasts.DismissAll()
		m.cursor = 0
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if !m.panel.IsOpen() {
		return
	}
	if !m.panelRect().contains(msg.X, msg.Y) {
		m.panel.DismissOutside()
	}
}

func (m *Model) toggleContrast() {
	if m.settings != nil {
		m.settings.SetHighContrast(!m.settings.Settings().HighContrast)
		m.highContrast = m.settings.Settings().HighContrast
	} else {
		m.highContrast = !m.highContrast
	}
	m.applyTheme()
}

func (m *Model) selected() (notify.Notification, bool) {
	items := m.panel.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return notify.Notification{}, false
	}
	return items[m.cursor], true
}

// selectID moves the cursor onto id so newly prepended items do not shift
// the selection. The cursor is clamped when id has been evicted.
func (m *Model) selectID(id notify.ID) {
	for i, n := range m.panel.Items() {
		if n.ID == id {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.panel.Items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
