// Package notify holds the in-memory notification feed: the record type,
// a pure reducer over feed state, and the Store handle consumers share.
package notify

import "time"

// ID uniquely identifies a notification for the lifetime of a Store.
type ID string

// Kind is the presentation category of a notification.
type Kind string

const (
	KindInfo     Kind = "info"
	KindSuccess  Kind = "success"
	KindWarning  Kind = "warning"
	KindError    Kind = "error"
	KindActivity Kind = "activity"
)

// Kinds returns every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindInfo, KindSuccess, KindWarning, KindError, KindActivity}
}

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindInfo, KindSuccess, KindWarning, KindError, KindActivity:
		return true
	}
	return false
}

// Action is an optional link attached to a notification.
type Action struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Notification is a single user-facing alert.
type Notification struct {
	ID        ID        `json:"id"`
	Seq       uint64    `json:"seq"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
	Action    *Action   `json:"action,omitempty"`
}

// HasAction reports whether the notification links somewhere.
func (n Notification) HasAction() bool {
	return n.Action != nil && n.Action.Target != ""
}
