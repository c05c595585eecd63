package notify

// Command is a mutation applied to feed State. The set is closed: Add,
// MarkRead, MarkAllRead, Remove and ClearAll.
type Command interface {
	command()
}

// Add prepends a fully built notification. Id, sequence and timestamp are
// assigned by the caller so that Apply stays pure. An id that is already
// present is ignored.
type Add struct {
	Notification Notification
}

// MarkRead sets Read on the notification with the given id.
type MarkRead struct {
	ID ID
}

// MarkAllRead sets Read on every notification.
type MarkAllRead struct{}

// Remove deletes the notification with the given id.
type Remove struct {
	ID ID
}

// ClearAll empties the feed.
type ClearAll struct{}

func (Add) command()         {}
func (MarkRead) command()    {}
func (MarkAllRead) command() {}
func (Remove) command()      {}
func (ClearAll) command()    {}

// State is an immutable snapshot of the feed, newest first.
type State struct {
	items []Notification
}

// NewState returns a state holding items in the given order.
func NewState(items ...Notification) State {
	cp := make([]Notification, len(items))
	copy(cp, items)
	return State{items: cp}
}

// List returns a copy of the notifications, newest first.
func (s State) List() []Notification {
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of notifications.
func (s State) Len() int {
	return len(s.items)
}

// UnreadCount counts notifications with Read == false. It is derived from
// the list on every call and never cached.
func (s State) UnreadCount() int {
	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Get returns the notification with the given id.
func (s State) Get(id ID) (Notification, bool) {
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	return Notification{}, false
}

func (s State) index(id ID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Apply returns the state produced by cmd. The input is never modified and
// commands that reference unknown ids return s unchanged.
func Apply(s State, cmd Command) State {
	switch c := cmd.(type) {
	case Add:
		if s.index(c.Notification.ID) >= 0 {
			return s
		}
		items := make([]Notification, 0, len(s.items)+1)
		items = append(items, c.Notification)
		items = append(items, s.items...)
		return State{items: items}

	case MarkRead:
		i := s.index(c.ID)
		if i < 0 || s.items[i].Read {
			return s
		}
		items := s.List()
		items[i].Read = true
		return State{items: items}

	case MarkAllRead:
		if s.UnreadCount() == 0 {
			return s
		}
		items := s.List()
		for i := range items {
			items[i].Read = true
		}
		return State{items: items}

	case Remove:
		i := s.index(c.ID)
		if i < 0 {
			return s
		}
		items := make([]Notification, 0, len(s.items)-1)
		items = append(items, s.items[:i]...)
		items = append(items, s.items[i+1:]...)
		return State{items: items}

	case ClearAll:
		if len(s.items) == 0 {
			return s
		}
		return State{}
	}

	return s
}

// changed reports whether Apply produced a different state. Unchanged
// results share the same backing array and length.
func changed(before, after State) bool {
	if len(before.items) != len(after.items) {
		return true
	}
	if len(before.items) == 0 {
		return false
	}
	return &before.items[0] != &after.items[0]
}
