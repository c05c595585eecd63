package commands

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/core/voice"
	"github.com/handsandhope/hope/internal/data/stores"
	"github.com/handsandhope/hope/pkg/iojson"
)

const promptQuestion = "Would you like to enable voice navigation? Say yes or no."

type promptRecorder interface {
	Record(ctx context.Context, a stores.PromptAnswer) error
}

// voiceEvent is one line of --json output.
type voiceEvent struct {
	Type         string `json:"type"`
	Intent       string `json:"intent,omitempty"`
	Destination  string `json:"destination,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
	Transcript   string `json:"transcript,omitempty"`
}

// voiceRunner drives one voice session: the enable prompt when it has not
// been answered yet, then keyword commands until the input ends.
type voiceRunner struct {
	settings *a11y.Controller
	prompts  promptRecorder
	profile  string
	speaker  voice.Sayer
	cooldown time.Duration
	backoff  backoff.BackOff
	now      func() time.Time
	json     bool
	out      io.Writer
	errOut   io.Writer
	log      zerolog.Logger

	mu        sync.Mutex
	prompt    *voice.ConfirmPrompt
	commander *voice.Commander
	location  string
	stop      context.CancelFunc
	denied    bool
}

func (r *voiceRunner) Run(ctx context.Context, rec voice.Recognizer) error {
	if r.now == nil {
		r.now = time.Now
	}
	p := newPrinter(r.out)

	s := r.settings.Settings()
	if s.VoicePromptAnswered && !s.VoiceNavigation {
		p.Infof("Voice navigation is off for profile %q. Turn it on with 'hope prefs edit'.", r.profile)
		return nil
	}

	ctx, cancel := context.WithCancel(logging.WithProfile(ctx, r.profile))
	defer cancel()

	r.mu.Lock()
	r.stop = cancel
	r.location = "home"
	r.commander = voice.NewCommander(voice.CommanderConfig{
		Navigate: r.navigate,
		Settings: r.settings,
		Help:     r.help,
		Speaker:  r.speaker,
	})
	if !s.VoicePromptAnswered {
		r.prompt = voice.NewConfirmPrompt(voice.ConfirmConfig{
			OnEnable:  func() { r.settings.SetVoiceNavigation(true) },
			OnDisable: func() { r.settings.SetVoiceNavigation(false) },
			OnClose:   r.settings.MarkPromptAnswered,
			Cooldown:  r.cooldown,
			Now:       r.now,
		})
	}
	r.mu.Unlock()

	opts := []voice.ListenerOption{
		voice.WithTranscriptHandler(func(t string) { r.handle(ctx, t) }),
		voice.WithStatusHandler(r.status),
		voice.WithListenerLogger(r.log),
	}
	if r.backoff != nil {
		opts = append(opts, voice.WithBackOff(r.backoff))
	}
	listener := voice.NewListener(rec, opts...)

	if r.prompt != nil {
		r.say(promptQuestion)
		if !r.json {
			p.Printf("%s", promptQuestion)
		}
	}

	if err := listener.Enable(); err != nil {
		return err
	}

	<-ctx.Done()
	listener.Disable()
	return nil
}

func (r *voiceRunner) status(s voice.Status) {
	r.log.Debug().
		Str("state", s.State.String()).
		Bool("enabled", s.Enabled).
		AnErr("last_error", s.LastError).
		Msg("listener status")

	if s.Enabled && !s.PermissionRequired {
		return
	}

	r.mu.Lock()
	stop := r.stop
	report := s.PermissionRequired && !r.denied
	if report {
		r.denied = true
	}
	r.mu.Unlock()

	if report {
		r.permissionDenied(s.LastError)
	}
	if stop != nil {
		stop()
	}
}

func (r *voiceRunner) permissionDenied(cause error) {
	const msg = "microphone permission denied"
	if !r.json {
		newPrinter(r.errOut).Errorf("%s", msg)
		return
	}
	data := map[string]any{"profile": r.profile}
	if cause != nil {
		data["error"] = cause.Error()
	}
	if err := iojson.WriteError(r.errOut, msg, data); err != nil {
		r.log.Warn().Err(err).Msg("failed to write error")
	}
}

func (r *voiceRunner) handle(ctx context.Context, transcript string) {
	r.mu.Lock()
	prompt := r.prompt
	commander := r.commander
	r.mu.Unlock()

	if prompt != nil && prompt.IsOpen() {
		r.answer(ctx, prompt, transcript)
		return
	}

	if !r.settings.Settings().VoiceNavigation {
		return
	}

	m, ok := commander.Handle(transcript)
	if !ok {
		r.log.Debug().Ctx(ctx).Str("transcript", transcript).Msg("no command matched")
		return
	}
	r.emit(voiceEvent{
		Type:         "command",
		Intent:       string(m.Intent),
		Destination:  m.Destination,
		Confirmation: m.Confirmation,
		Transcript:   m.Transcript,
	})
}

func (r *voiceRunner) answer(ctx context.Context, prompt *voice.ConfirmPrompt, transcript string) {
	outcome := prompt.Handle(transcript)
	switch outcome {
	case voice.Accepted, voice.Declined:
	case voice.Unrecognized:
		if !r.json {
			newPrinter(r.out).Infof("Please say yes or no.")
		}
		return
	default:
		return
	}

	if r.prompts != nil {
		err := r.prompts.Record(context.WithoutCancel(ctx), stores.PromptAnswer{
			Profile:    r.profile,
			Outcome:    outcome.String(),
			Transcript: transcript,
			AnsweredAt: r.now(),
		})
		if err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Msg("failed to record prompt answer")
		}
	}

	ev := voiceEvent{Type: "prompt", Outcome: outcome.String(), Transcript: transcript}
	if outcome == voice.Accepted {
		ev.Confirmation = "Voice navigation enabled"
	} else {
		ev.Confirmation = "Voice navigation disabled"
	}
	r.say(ev.Confirmation)
	r.emit(ev)

	if outcome == voice.Declined {
		r.mu.Lock()
		stop := r.stop
		r.mu.Unlock()
		stop()
	}
}

func (r *voiceRunner) navigate(destination string) {
	r.mu.Lock()
	r.location = destination
	r.mu.Unlock()
	r.log.Info().Str("destination", destination).Msg("voice navigation")
}

// Location returns the last page navigated to.
func (r *voiceRunner) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

func (r *voiceRunner) help() {
	if r.json {
		return
	}
	r.mu.Lock()
	commander := r.commander
	r.mu.Unlock()

	p := newPrinter(r.out)
	for _, h := range commander.Commands() {
		p.KV(string(h.Intent), h.Description)
	}
}

func (r *voiceRunner) say(text string) {
	if r.speaker != nil {
		r.speaker.Say(text)
	}
}

func (r *voiceRunner) emit(ev voiceEvent) {
	if r.json {
		if err := iojson.WriteLine(r.out, ev); err != nil {
			r.log.Warn().Err(err).Msg("failed to write event")
		}
		return
	}

	p := newPrinter(r.out)
	if ev.Destination != "" {
		p.Successf("%s (%s)", ev.Confirmation, ev.Destination)
		return
	}
	p.Successf("%s", ev.Confirmation)
}
