package a11y

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Controller owns the live settings for one profile and writes every
// change through to the Store. Persistence failures are logged only;
// accessibility changes always take effect in memory.
type Controller struct {
	mu       sync.Mutex
	settings Settings
	store    Store
	profile  string
	log      zerolog.Logger
	onChange []func(Settings)
}

// NewController creates a controller seeded with initial. store may be nil.
func NewController(store Store, profile string, initial Settings, logger zerolog.Logger) *Controller {
	return &Controller{
		settings: initial,
		store:    store,
		profile:  profile,
		log:      logger,
	}
}

// Load reads the profile's settings from store, falling back to defaults.
func Load(ctx context.Context, store Store, profile string, logger zerolog.Logger) *Controller {
	initial := Defaults()
	if store != nil {
		s, err := store.Load(ctx, profile)
		if err != nil {
			logger.Warn().Err(err).Str("profile", profile).Msg("failed to load accessibility settings")
		} else {
			initial = s
		}
	}
	return NewController(store, profile, initial, logger)
}

// OnChange registers fn to be called after every change.
func (c *Controller) OnChange(fn func(Settings)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// IncreaseTextSize steps up one size. It returns false at the maximum.
func (c *Controller) IncreaseTextSize() bool {
	return c.update(func(s *Settings) bool {
		if s.TextSize >= MaxTextSize {
			return false
		}
		s.TextSize++
		return true
	})
}

// DecreaseTextSize steps down one size. It returns false at the minimum.
func (c *Controller) DecreaseTextSize() bool {
	return c.update(func(s *Settings) bool {
		if s.TextSize <= MinTextSize {
			return false
		}
		s.TextSize--
		return true
	})
}

// SetTextSize sets an explicit size.
func (c *Controller) SetTextSize(t TextSize) {
	c.update(func(s *Settings) bool {
		if t < MinTextSize || t > MaxTextSize || s.TextSize == t {
			return false
		}
		s.TextSize = t
		return true
	})
}

// SetHighContrast enables or disables high contrast mode.
func (c *Controller) SetHighContrast(on bool) {
	c.update(func(s *Settings) bool {
		if s.HighContrast == on {
			return false
		}
		s.HighContrast = on
		return true
	})
}

// SetScreenReader enables or disables screen reader mode.
func (c *Controller) SetScreenReader(on bool) {
	c.update(func(s *Settings) bool {
		if s.ScreenReader == on {
			return false
		}
		s.ScreenReader = on
		return true
	})
}

// SetVoiceNavigation records whether voice navigation is enabled.
func (c *Controller) SetVoiceNavigation(on bool) {
	c.update(func(s *Settings) bool {
		if s.VoiceNavigation == on {
			return false
		}
		s.VoiceNavigation = on
		return true
	})
}

// MarkPromptAnswered records that the first-run voice prompt was answered.
func (c *Controller) MarkPromptAnswered() {
	c.update(func(s *Settings) bool {
		if s.VoicePromptAnswered {
			return false
		}
		s.VoicePromptAnswered = true
		return true
	})
}

// Reset restores display defaults. Voice navigation state and the prompt
// answer are kept so a reset issued by voice does not turn voice off.
func (c *Controller) Reset() {
	c.update(func(s *Settings) bool {
		next := Defaults()
		next.VoiceNavigation = s.VoiceNavigation
		next.VoicePromptAnswered = s.VoicePromptAnswered
		if next == *s {
			return false
		}
		*s = next
		return true
	})
}

func (c *Controller) update(fn func(*Settings) bool) bool {
	c.mu.Lock()
	if !fn(&c.settings) {
		c.mu.Unlock()
		return false
	}
	snapshot := c.settings
	hooks := make([]func(Settings), len(c.onChange))
	copy(hooks, c.onChange)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(context.Background(), c.profile, snapshot); err != nil {
			c.log.Error().Err(err).Str("profile", c.profile).Msg("failed to save accessibility settings")
		}
	}

	for _, h := range hooks {
		h(snapshot)
	}
	return true
}
