package speech

import "github.com/handsandhope/hope/internal/core/voice"

// Unsupported is a Recognizer and Synthesizer for hosts without speech.
type Unsupported struct{}

var (
	_ voice.Recognizer  = Unsupported{}
	_ voice.Synthesizer = Unsupported{}
)

func (Unsupported) Supported() bool { return false }

func (Unsupported) Start(voice.Handlers) (voice.Session, error) {
	return nil, voice.ErrNotSupported
}

func (Unsupported) Speak(string) error { return voice.ErrNotSupported }

func (Unsupported) Cancel() {}
