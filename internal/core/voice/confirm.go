package voice

import (
	"sync"
	"time"
)

// DefaultCooldown is the window after a processed result during which
// further results are ignored.
const DefaultCooldown = time.Second

var (
	affirmativeTokens = []string{"yes", "yeah", "okay"}
	negativeTokens    = []string{"no", "nope"}
)

// ConfirmOutcome is the result of handling one transcript.
type ConfirmOutcome int

const (
	// Unrecognized transcripts leave the prompt open.
	Unrecognized ConfirmOutcome = iota
	// Accepted means the enable callback ran and the prompt closed.
	Accepted
	// Declined means the disable callback ran and the prompt closed.
	Declined
	// Suppressed results arrived inside the cooldown window.
	Suppressed
	// Closed results arrived after the prompt was answered or dismissed.
	Closed
)

func (o ConfirmOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	case Suppressed:
		return "suppressed"
	case Closed:
		return "closed"
	default:
		return "unrecognized"
	}
}

// ConfirmConfig configures a ConfirmPrompt.
type ConfirmConfig struct {
	OnEnable  func()
	OnDisable func()
	OnClose   func()
	Cooldown  time.Duration
	Now       func() time.Time
}

// ConfirmPrompt is the yes/no question asked before voice navigation is
// turned on. At most one of OnEnable/OnDisable fires per prompt.
type ConfirmPrompt struct {
	mu        sync.Mutex
	cfg       ConfirmConfig
	open      bool
	lastAt    time.Time
	processed bool
}

// NewConfirmPrompt returns an open prompt.
func NewConfirmPrompt(cfg ConfirmConfig) *ConfirmPrompt {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ConfirmPrompt{cfg: cfg, open: true}
}

// IsOpen reports whether the prompt is still awaiting an answer.
func (p *ConfirmPrompt) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Dismiss closes the prompt without calling either callback.
func (p *ConfirmPrompt) Dismiss() {
	p.mu.Lock()
	wasOpen := p.open
	p.open = false
	p.mu.Unlock()

	if wasOpen && p.cfg.OnClose != nil {
		p.cfg.OnClose()
	}
}

// Handle processes one transcript. Affirmative tokens are checked before
// negative ones; matching is by substring on the normalized text.
func (p *ConfirmPrompt) Handle(transcript string) ConfirmOutcome {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return Closed
	}

	now := p.cfg.Now()
	if p.processed && now.Sub(p.lastAt) < p.cfg.Cooldown {
		p.mu.Unlock()
		return Suppressed
	}
	p.processed = true
	p.lastAt = now

	t := Normalize(transcript)
	var outcome ConfirmOutcome
	switch {
	case containsAny(t, affirmativeTokens):
		outcome = Accepted
	case containsAny(t, negativeTokens):
		outcome = Declined
	default:
		p.mu.Unlock()
		return Unrecognized
	}
	p.open = false
	p.mu.Unlock()

	if outcome == Accepted {
		if p.cfg.OnEnable != nil {
			p.cfg.OnEnable()
		}
	} else if p.cfg.OnDisable != nil {
		p.cfg.OnDisable()
	}
	if p.cfg.OnClose != nil {
		p.cfg.OnClose()
	}
	return outcome
}
