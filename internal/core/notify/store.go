package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Snapshot is delivered to subscribers after every state change.
type Snapshot struct {
	Items  []Notification
	Unread int
}

// Subscriber is a callback invoked with the post-change snapshot.
// Subscribers may read the store but must not mutate it.
type Subscriber func(Snapshot)

// Store is the canonical notification feed. All mutations go through Apply
// under a single lock, so no operation is observable half applied.
// Snapshots reach subscribers in the order the mutations were applied.
type Store struct {
	// pubMu is held from apply through fan-out.
	pubMu  sync.Mutex
	mu     sync.RWMutex
	state  State
	seq    uint64
	subs   map[int]Subscriber
	nextSb int

	now   func() time.Time
	newID func() ID
	log   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation. Generated ids must be unique for
// the lifetime of the store.
func WithIDGenerator(fn func() ID) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subs:  make(map[int]Subscriber),
		now:   time.Now,
		newID: newUUID,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}
	return ID(id.String())
}

// Add creates an unread notification, prepends it and returns its id.
// An unknown kind is stored as KindInfo.
func (s *Store) Add(title, message string, kind Kind, action *Action) ID {
	if !kind.IsValid() {
		kind = KindInfo
	}
	if action != nil {
		cp := *action
		action = &cp
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	s.seq++
	n := Notification{
		ID:        s.newID(),
		Seq:       s.seq,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: s.now(),
		Action:    action,
	}
	snap, ok := s.applyLocked(Add{Notification: n})
	s.mu.Unlock()

	s.log.Debug().Str("id", string(n.ID)).Str("kind", string(kind)).Msg("notification added")
	if ok {
		s.publish(snap)
	}
	return n.ID
}

// MarkAsRead marks the notification read. Unknown ids are ignored.
func (s *Store) MarkAsRead(id ID) {
	s.Dispatch(MarkRead{ID: id})
}

// MarkAllAsRead marks every notification read.
func (s *Store) MarkAllAsRead() {
	s.Dispatch(MarkAllRead{})
}

// Remove deletes the notification. Unknown ids are ignored.
func (s *Store) Remove(id ID) {
	s.Dispatch(Remove{ID: id})
}

// ClearAll empties the feed.
func (s *Store) ClearAll() {
	s.Dispatch(ClearAll{})
}

// Dispatch applies cmd atomically and notifies subscribers when the state
// changed. Add commands are accepted as-is; prefer Store.Add which assigns
// ids, sequence numbers and timestamps.
func (s *Store) Dispatch(cmd Command) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	snap, ok := s.applyLocked(cmd)
	s.mu.Unlock()

	if ok {
		s.publish(snap)
	}
}

func (s *Store) applyLocked(cmd Command) (Snapshot, bool) {
	next := Apply(s.state, cmd)
	if !changed(s.state, next) {
		return Snapshot{}, false
	}
	s.state = next
	return Snapshot{Items: next.List(), Unread: next.UnreadCount()}, true
}

// List returns the notifications, newest first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.List()
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UnreadCount()
}

// Get returns the notification with the given id.
func (s *Store) Get(id ID) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Get(id)
}

// Snapshot returns the current items and unread count together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Items: s.state.List(), Unread: s.state.UnreadCount()}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSb
	s.nextSb++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish(snap Snapshot) {
	s.mu.RLock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}
