package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handsandhope/hope/internal/core/eventbus"
)

// NotificationBuffer queues notifications produced off the UI goroutine
// (event bus, kafka) and emits coalesced drain signals. The Update loop is
// the only caller of Drain, which keeps the store single-writer.
type NotificationBuffer struct {
	mu      sync.Mutex
	pending []eventbus.NotificationPublishedPayload
	signal  chan struct{}
}

// NewNotificationBuffer constructs a buffer for async notification delivery.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		signal: make(chan struct{}, 1),
	}
}

// Push appends a notification and emits a non-blocking drain signal.
func (b *NotificationBuffer) Push(n eventbus.NotificationPublishedPayload) {
	b.mu.Lock()
	b.pending = append(b.pending, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered notifications in arrival order and clears the
// buffer.
func (b *NotificationBuffer) Drain() []eventbus.NotificationPublishedPayload {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return nil
	}

	out := make([]eventbus.NotificationPublishedPayload, len(b.pending))
	copy(out, b.pending)
	b.pending = b.pending[:0]
	return out
}

// WaitForSignal blocks until there are notifications ready to drain.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}

// Attach routes every NotificationPublished event on bus into the buffer.
func (b *NotificationBuffer) Attach(bus *eventbus.EventBus) {
	bus.SubscribeNotificationPublished(b.Push)
}
