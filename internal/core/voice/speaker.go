package voice

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sayer speaks a confirmation.
type Sayer interface {
	Say(text string)
}

// Speaker serializes confirmations: each Say interrupts whatever is being
// spoken so utterances never overlap.
type Speaker struct {
	mu    sync.Mutex
	synth Synthesizer
	log   zerolog.Logger
}

// NewSpeaker wraps synth. A nil or unsupported synthesizer makes Say a no-op.
func NewSpeaker(synth Synthesizer, logger zerolog.Logger) *Speaker {
	return &Speaker{synth: synth, log: logger}
}

// Supported reports whether confirmations will be audible.
func (s *Speaker) Supported() bool {
	return s.synth != nil && s.synth.Supported()
}

// Say cancels the current utterance and speaks text.
func (s *Speaker) Say(text string) {
	if !s.Supported() {
		s.log.Debug().Str("text", text).Msg("speech synthesis unavailable")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.synth.Cancel()
	if err := s.synth.Speak(text); err != nil {
		s.log.Warn().Err(err).Str("text", text).Msg("failed to speak confirmation")
	}
}

// Stop interrupts the current utterance.
func (s *Speaker) Stop() {
	if !s.Supported() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth.Cancel()
}
