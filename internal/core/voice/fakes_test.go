package voice

import (
	"sync"
	"time"
)

type fakeSession struct {
	mu      sync.Mutex
	stopped int
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
}

func (s *fakeSession) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeRecognizer struct {
	mu          sync.Mutex
	unsupported bool
	startErr    error
	endOnStart  bool
	handlers    []Handlers
	sessions    []*fakeSession
}

func (r *fakeRecognizer) Supported() bool { return !r.unsupported }

func (r *fakeRecognizer) Start(h Handlers) (Session, error) {
	r.mu.Lock()
	err := r.startErr
	endNow := r.endOnStart
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s := &fakeSession{}
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()

	if endNow {
		h.OnEnd()
	}
	return s, nil
}

func (r *fakeRecognizer) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

func (r *fakeRecognizer) Last() Handlers {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[len(r.handlers)-1]
}

func (r *fakeRecognizer) At(i int) Handlers {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[i]
}

func (r *fakeRecognizer) Session(i int) *fakeSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[i]
}

type scheduled struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

// manualScheduler records restarts instead of running them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []*scheduled
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &scheduled{delay: d, fn: fn}
	m.pending = append(m.pending, s)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		s.cancelled = true
	}
}

// RunNext runs the oldest pending callback and reports its delay.
func (m *manualScheduler) RunNext() (time.Duration, bool) {
	m.mu.Lock()
	for len(m.pending) > 0 {
		s := m.pending[0]
		m.pending = m.pending[1:]
		if s.cancelled {
			continue
		}
		m.mu.Unlock()
		s.fn()
		return s.delay, true
	}
	m.mu.Unlock()
	return 0, false
}

func (m *manualScheduler) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.pending {
		if !s.cancelled {
			n++
		}
	}
	return n
}

type fakeSynth struct {
	mu          sync.Mutex
	unsupported bool
	speakErr    error
	events      []string
}

func (f *fakeSynth) Supported() bool { return !f.unsupported }

func (f *fakeSynth) Speak(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "speak:"+text)
	return f.speakErr
}

func (f *fakeSynth) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "cancel")
}

func (f *fakeSynth) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
