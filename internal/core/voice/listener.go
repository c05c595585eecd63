package voice

import (
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

var errRestartLimit = errors.New("speech recognition stopped after repeated failures")

// ListenState is the recognition state.
type ListenState int

const (
	StateIdle ListenState = iota
	StateListening
)

func (s ListenState) String() string {
	if s == StateListening {
		return "listening"
	}
	return "idle"
}

// Status is the externally visible listener state.
type Status struct {
	Supported          bool
	State              ListenState
	Enabled            bool
	PermissionRequired bool
	LastError          error
}

// Scheduler runs fn after d and returns a function cancelling it.
type Scheduler func(d time.Duration, fn func()) (cancel func())

func timeScheduler(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithTranscriptHandler sets the consumer of normalized transcripts.
func WithTranscriptHandler(fn func(string)) ListenerOption {
	return func(l *Listener) { l.onTranscript = fn }
}

// WithStatusHandler is called after every status change.
func WithStatusHandler(fn func(Status)) ListenerOption {
	return func(l *Listener) { l.onStatus = fn }
}

// WithBackOff sets the restart delay policy used after transient errors.
func WithBackOff(b backoff.BackOff) ListenerOption {
	return func(l *Listener) { l.backoff = b }
}

// WithScheduler overrides the timer used for restarts.
func WithScheduler(s Scheduler) ListenerOption {
	return func(l *Listener) { l.schedule = s }
}

// WithListenerLogger sets the logger.
func WithListenerLogger(log zerolog.Logger) ListenerOption {
	return func(l *Listener) { l.log = log }
}

// Listener keeps one recognition session alive while enabled.
//
// Transitions:
//
//	Idle      --Enable-->            Listening
//	Listening --ended, enabled-->    Listening (new Start, maybe after backoff)
//	Listening --ended, disabled-->   Idle
//	Listening --permission error-->  Idle (blocked until RequestPermission)
//	any       --Disable-->           Idle
//
// Every session carries a generation number; events from an older
// generation are dropped so a stopped session cannot deliver results.
type Listener struct {
	rec Recognizer

	mu                 sync.Mutex
	state              ListenState
	enabled            bool
	permissionRequired bool
	lastErr            error
	gen                uint64
	session            Session
	ended              uint64
	retry              bool
	cancelRestart      func()

	backoff      backoff.BackOff
	schedule     Scheduler
	onTranscript func(string)
	onStatus     func(Status)
	log          zerolog.Logger
}

// NewListener creates an idle listener over rec.
func NewListener(rec Recognizer, opts ...ListenerOption) *Listener {
	l := &Listener{
		rec:      rec,
		schedule: timeScheduler,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.backoff == nil {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 250 * time.Millisecond
		b.MaxInterval = 10 * time.Second
		b.MaxElapsedTime = 0
		l.backoff = b
	}
	return l
}

// Supported reports whether the recognizer can run on this host.
func (l *Listener) Supported() bool {
	return l.rec != nil && l.rec.Supported()
}

// Status returns the current status.
func (l *Listener) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statusLocked()
}

func (l *Listener) statusLocked() Status {
	return Status{
		Supported:          l.Supported(),
		State:              l.state,
		Enabled:            l.enabled,
		PermissionRequired: l.permissionRequired,
		LastError:          l.lastErr,
	}
}

// Enable starts listening. It returns ErrNotSupported on hosts without
// recognition and ErrPermissionDenied while permission is outstanding.
func (l *Listener) Enable() error {
	if !l.Supported() {
		return ErrNotSupported
	}

	l.mu.Lock()
	if l.permissionRequired {
		l.mu.Unlock()
		return ErrPermissionDenied
	}
	if l.enabled {
		l.mu.Unlock()
		return nil
	}
	l.enabled = true
	l.backoff.Reset()
	l.mu.Unlock()

	l.begin()
	return nil
}

// Disable stops the active session and returns to Idle. It is safe to call
// repeatedly.
func (l *Listener) Disable() {
	l.mu.Lock()
	wasActive := l.enabled || l.session != nil || l.cancelRestart != nil
	l.enabled = false
	l.gen++
	sess := l.session
	l.session = nil
	l.state = StateIdle
	if l.cancelRestart != nil {
		l.cancelRestart()
		l.cancelRestart = nil
	}
	status := l.statusLocked()
	l.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}
	if wasActive {
		l.emit(status)
	}
}

// RequestPermission clears a permission block and, if the listener is
// still enabled, starts a new session.
func (l *Listener) RequestPermission() error {
	if !l.Supported() {
		return ErrNotSupported
	}

	l.mu.Lock()
	l.permissionRequired = false
	if errors.Is(l.lastErr, ErrPermissionDenied) {
		l.lastErr = nil
	}
	enabled := l.enabled
	status := l.statusLocked()
	l.mu.Unlock()

	l.emit(status)
	if enabled {
		l.begin()
	}
	return nil
}

func (l *Listener) begin() {
	l.mu.Lock()
	if !l.enabled || l.permissionRequired || l.session != nil {
		l.mu.Unlock()
		return
	}
	l.cancelRestart = nil
	l.gen++
	gen := l.gen
	l.state = StateListening
	status := l.statusLocked()
	l.mu.Unlock()

	l.emit(status)

	sess, err := l.rec.Start(l.handlers(gen))

	l.mu.Lock()
	if gen != l.gen {
		// Disabled or restarted while Start was running.
		l.mu.Unlock()
		if sess != nil {
			sess.Stop()
		}
		return
	}

	if err != nil {
		l.state = StateIdle
		if errors.Is(err, ErrNotSupported) {
			// The recognizer went away (input closed, device removed).
			l.enabled = false
			l.lastErr = ErrNotSupported
			status = l.statusLocked()
			l.mu.Unlock()
			l.log.Info().Msg("speech recognition no longer available")
			l.emit(status)
			return
		}
		if errors.Is(err, ErrPermissionDenied) {
			l.permissionRequired = true
			l.lastErr = ErrPermissionDenied
			status = l.statusLocked()
			l.mu.Unlock()
			l.log.Warn().Msg("microphone permission denied")
			l.emit(status)
			return
		}
		l.lastErr = err
		l.retry = true
		status = l.statusLocked()
		l.mu.Unlock()
		l.log.Warn().Err(err).Msg("failed to start speech recognition")
		l.emit(status)
		l.restart(gen)
		return
	}

	if l.ended != gen {
		l.session = sess
	}
	l.mu.Unlock()
}

func (l *Listener) handlers(gen uint64) Handlers {
	return Handlers{
		OnStart: func() {
			l.log.Debug().Uint64("gen", gen).Msg("recognition started")
		},
		OnResult: func(transcript string) {
			l.handleResult(gen, transcript)
		},
		OnError: func(code string) {
			l.handleError(gen, code)
		},
		OnEnd: func() {
			l.handleEnd(gen)
		},
	}
}

func (l *Listener) handleResult(gen uint64, transcript string) {
	l.mu.Lock()
	if gen != l.gen || !l.enabled {
		l.mu.Unlock()
		return
	}
	l.backoff.Reset()
	l.retry = false
	fn := l.onTranscript
	l.mu.Unlock()

	t := Normalize(transcript)
	if t == "" || fn == nil {
		return
	}
	fn(t)
}

func (l *Listener) handleError(gen uint64, code string) {
	class := ClassifyError(code)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}

	switch class {
	case ErrorIgnorable:
		l.mu.Unlock()
		l.log.Debug().Str("code", code).Msg("ignoring recognition error")
		return
	case ErrorTransient:
		l.retry = true
		l.mu.Unlock()
		l.log.Debug().Str("code", code).Msg("transient recognition error")
		return
	case ErrorPermission:
		l.permissionRequired = true
		l.lastErr = ErrPermissionDenied
	default:
		l.retry = true
		l.lastErr = &RecognitionError{Code: code}
	}
	status := l.statusLocked()
	l.mu.Unlock()

	l.log.Warn().Str("code", code).Str("class", class.String()).Msg("recognition error")
	l.emit(status)
}

func (l *Listener) handleEnd(gen uint64) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.ended = gen
	l.session = nil
	l.state = StateIdle
	status := l.statusLocked()
	l.mu.Unlock()

	l.emit(status)
	l.restart(gen)
}

// restart schedules a new session when the listener is still enabled.
// Ordinary session ends restart immediately; ends that followed an error
// wait for the next backoff interval.
func (l *Listener) restart(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || !l.enabled || l.permissionRequired || l.session != nil {
		l.mu.Unlock()
		return
	}

	var delay time.Duration
	if l.retry {
		delay = l.backoff.NextBackOff()
		if delay == backoff.Stop {
			l.enabled = false
			l.lastErr = errRestartLimit
			status := l.statusLocked()
			l.mu.Unlock()
			l.log.Error().Msg("speech recognition restart limit reached")
			l.emit(status)
			return
		}
	}

	l.cancelRestart = l.schedule(delay, l.begin)
	l.mu.Unlock()
}

func (l *Listener) emit(s Status) {
	if l.onStatus != nil {
		l.onStatus(s)
	}
}
