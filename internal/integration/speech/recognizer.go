package speech

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/handsandhope/hope/internal/core/voice"
)

// ErrorPrefix marks an input line as a recognizer error code, e.g. "!network".
const ErrorPrefix = "!"

// LineRecognizer treats each non-empty line of an input stream as one
// recognized utterance. Lines of the form "!<code>" are delivered as
// recognition errors and end the session. Input is read by one goroutine
// for the life of the recognizer, so lines typed between sessions are not
// lost. Once the input is exhausted Start returns voice.ErrNotSupported.
type LineRecognizer struct {
	r     io.Reader
	once  sync.Once
	lines chan string
	done  chan struct{}
}

var _ voice.Recognizer = (*LineRecognizer)(nil)

// NewLineRecognizer reads utterances from r.
func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{
		r:     r,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// Supported reports whether input remains.
func (l *LineRecognizer) Supported() bool {
	select {
	case <-l.done:
		return false
	default:
		return l.r != nil
	}
}

// Done is closed once the input is exhausted.
func (l *LineRecognizer) Done() <-chan struct{} {
	return l.done
}

func (l *LineRecognizer) pump() {
	defer close(l.done)
	sc := bufio.NewScanner(l.r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		l.lines <- line
	}
}

// Start begins a session.
func (l *LineRecognizer) Start(h voice.Handlers) (voice.Session, error) {
	if l.r == nil {
		return nil, voice.ErrNotSupported
	}
	l.once.Do(func() { go l.pump() })

	select {
	case <-l.done:
		return nil, voice.ErrNotSupported
	default:
	}

	s := &lineSession{stop: make(chan struct{})}
	go s.run(l, h)
	return s, nil
}

type lineSession struct {
	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
}

// Stop ends the session. It is safe to call more than once and from
// inside a handler.
func (s *lineSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stop)
}

func (s *lineSession) deliver(fn func()) bool {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped || fn == nil {
		return !stopped
	}
	fn()
	return true
}

func (s *lineSession) run(l *LineRecognizer, h voice.Handlers) {
	if h.OnStart != nil {
		s.deliver(h.OnStart)
	}
	defer func() {
		if h.OnEnd != nil {
			s.deliver(h.OnEnd)
		}
	}()

	for {
		select {
		case <-s.stop:
			return
		case <-l.done:
			return
		case line := <-l.lines:
			if code, ok := strings.CutPrefix(line, ErrorPrefix); ok {
				if h.OnError != nil {
					s.deliver(func() { h.OnError(code) })
				}
				return
			}
			if h.OnResult != nil && !s.deliver(func() { h.OnResult(line) }) {
				return
			}
		}
	}
}
