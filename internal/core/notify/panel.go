package notify

import "sync"

// PanelState is the display state of the notification panel.
type PanelState int

const (
	PanelClosed PanelState = iota
	PanelOpen
)

func (p PanelState) String() string {
	if p == PanelOpen {
		return "open"
	}
	return "closed"
}

// Navigator follows an action target.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

// Navigate calls f(target).
func (f NavigatorFunc) Navigate(target string) { f(target) }

// Panel binds user gestures to Store operations and owns the UI-only
// open/closed state. Panel state never touches the feed data.
type Panel struct {
	store *Store
	nav   Navigator

	mu         sync.Mutex
	state      PanelState
	lastActive ID
}

// NewPanel creates a closed panel over store. nav may be nil, in which case
// actions are not followed.
func NewPanel(store *Store, nav Navigator) *Panel {
	return &Panel{store: store, nav: nav}
}

// State returns the current display state.
func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsOpen reports whether the panel is open.
func (p *Panel) IsOpen() bool {
	return p.State() == PanelOpen
}

// Toggle flips between Closed and Open.
func (p *Panel) Toggle() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PanelOpen {
		p.state = PanelClosed
	} else {
		p.state = PanelOpen
	}
	return p.state
}

// Close moves the panel to Closed.
func (p *Panel) Close() {
	p.mu.Lock()
	p.state = PanelClosed
	p.mu.Unlock()
}

// DismissOutside handles a gesture outside the panel. It closes an open
// panel and is ignored when the panel is already closed.
func (p *Panel) DismissOutside() {
	p.Close()
}

// Click follows the notification's action when it has one and marks it
// read. Clicking an id that no longer exists does nothing.
func (p *Panel) Click(id ID) {
	n, ok := p.store.Get(id)
	if !ok {
		return
	}
	p.touch(id)

	if n.HasAction() && p.nav != nil {
		p.nav.Navigate(n.Action.Target)
	}
	p.store.MarkAsRead(id)
}

// Dismiss removes the notification without triggering the click path.
func (p *Panel) Dismiss(id ID) {
	p.touch(id)
	p.store.Remove(id)
}

// MarkAllRead marks every notification read.
func (p *Panel) MarkAllRead() {
	p.store.MarkAllAsRead()
}

// ClearAll removes every notification.
func (p *Panel) ClearAll() {
	p.store.ClearAll()
}

// Items returns the current feed, newest first.
func (p *Panel) Items() []Notification {
	return p.store.List()
}

// Badge returns the unread count at the time of the call.
func (p *Panel) Badge() int {
	return p.store.UnreadCount()
}

// LastInteracted returns the id of the last clicked or dismissed item.
func (p *Panel) LastInteracted() ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

func (p *Panel) touch(id ID) {
	p.mu.Lock()
	p.lastActive = id
	p.mu.Unlock()
}
