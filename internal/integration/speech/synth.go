// Package speech provides Recognizer and Synthesizer implementations for
// terminals: confirmations are spoken by an external TTS program and
// transcripts are read line by line from an input stream.
package speech

import (
	"context"
	"sync"

	"github.com/handsandhope/hope/internal/core/voice"
	"github.com/handsandhope/hope/pkg/executil"
	"github.com/rs/zerolog"
)

// CommandSynthesizer speaks by running a program such as `say` or `espeak`
// with the text as its last argument.
type CommandSynthesizer struct {
	exec      executil.Executor
	argv      []string
	available func(string) bool
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ voice.Synthesizer = (*CommandSynthesizer)(nil)

// SynthOption configures a CommandSynthesizer.
type SynthOption func(*CommandSynthesizer)

// WithExecutor replaces the process runner.
func WithExecutor(e executil.Executor) SynthOption {
	return func(s *CommandSynthesizer) { s.exec = e }
}

// WithLookup replaces the PATH lookup used by Supported.
func WithLookup(fn func(string) bool) SynthOption {
	return func(s *CommandSynthesizer) { s.available = fn }
}

// WithSynthLogger sets the logger.
func WithSynthLogger(l zerolog.Logger) SynthOption {
	return func(s *CommandSynthesizer) { s.log = l }
}

// NewCommandSynthesizer returns a synthesizer running argv.
func NewCommandSynthesizer(argv []string, opts ...SynthOption) *CommandSynthesizer {
	s := &CommandSynthesizer{
		exec:      &executil.RealExecutor{},
		argv:      append([]string(nil), argv...),
		available: executil.Available,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supported reports whether the configured program exists.
func (s *CommandSynthesizer) Supported() bool {
	return len(s.argv) > 0 && s.available(s.argv[0])
}

// Speak starts an utterance and returns without waiting for it to finish.
// A running utterance is cancelled first.
func (s *CommandSynthesizer) Speak(text string) error {
	if !s.Supported() {
		return voice.ErrNotSupported
	}

	s.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	args := append(append([]string(nil), s.argv[1:]...), text)
	go func() {
		defer close(done)
		defer cancel()
		if _, err := s.exec.Run(ctx, s.argv[0], args...); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Str("cmd", s.argv[0]).Msg("speech program failed")
		}
	}()
	return nil
}

// Cancel interrupts the current utterance and waits for the program to exit.
func (s *CommandSynthesizer) Cancel() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current utterance finishes.
func (s *CommandSynthesizer) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}
