// Package voice turns speech-recognition transcripts into application
// actions. Platform speech services sit behind the Recognizer and
// Synthesizer interfaces; everything else here is deterministic keyword
// matching and a small listening state machine.
package voice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSupported means the host has no speech capability. Retrying is
	// pointless.
	ErrNotSupported = errors.New("speech recognition not supported")

	// ErrPermissionDenied means the user or platform refused microphone
	// access. It can be retried with an explicit re-request.
	ErrPermissionDenied = errors.New("microphone permission denied")
)

// RecognitionError is a non-transient recognizer failure surfaced to the UI.
type RecognitionError struct {
	Code string
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition failed: %s", e.Code)
}

// Handlers receives events from one recognition session.
type Handlers struct {
	OnStart  func()
	OnEnd    func()
	OnResult func(transcript string)
	OnError  func(code string)
}

// Session is an active recognition session. Stop is idempotent; handlers
// not yet started when Stop is called are dropped.
type Session interface {
	Stop()
}

// Recognizer produces transcripts from speech.
type Recognizer interface {
	Supported() bool
	Start(h Handlers) (Session, error)
}

// Synthesizer speaks confirmations. Speak starts an utterance and returns
// without waiting for it to finish; Cancel interrupts the current one.
type Synthesizer interface {
	Supported() bool
	Speak(text string) error
	Cancel()
}

// ErrorClass groups recognizer error codes by how the listener reacts.
type ErrorClass int

const (
	// ErrorIgnorable codes end the session quietly; listening resumes.
	ErrorIgnorable ErrorClass = iota
	// ErrorTransient codes resume listening after a backoff delay.
	ErrorTransient
	// ErrorPermission codes block listening until permission is re-requested.
	ErrorPermission
	// ErrorFailure codes are surfaced to the user.
	ErrorFailure
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorIgnorable:
		return "ignorable"
	case ErrorTransient:
		return "transient"
	case ErrorPermission:
		return "permission"
	default:
		return "failure"
	}
}

// ClassifyError maps a recognizer error code to its class.
func ClassifyError(code string) ErrorClass {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "no-speech", "aborted":
		return ErrorIgnorable
	case "network":
		return ErrorTransient
	case "not-allowed", "permission-denied", "service-not-allowed":
		return ErrorPermission
	default:
		return ErrorFailure
	}
}

// Normalize lowercases and trims a transcript.
func Normalize(transcript string) string {
	return strings.ToLower(strings.TrimSpace(transcript))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
