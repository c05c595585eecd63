// Package a11y models the accessibility preferences a user can change by
// keyboard or voice: text size, high contrast, screen reader and voice
// navigation.
package a11y

import (
	"context"
	"fmt"
)

// TextSize is an ordered text scale.
type TextSize int

const (
	TextSmall TextSize = iota
	TextMedium
	TextLarge
	TextXLarge
)

const (
	MinTextSize = TextSmall
	MaxTextSize = TextXLarge
)

var textSizeNames = map[TextSize]string{
	TextSmall:  "small",
	TextMedium: "medium",
	TextLarge:  "large",
	TextXLarge: "x-large",
}

func (t TextSize) String() string {
	if s, ok := textSizeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TextSize(%d)", int(t))
}

// ParseTextSize maps a name back to a TextSize.
func ParseTextSize(s string) (TextSize, error) {
	for k, v := range textSizeNames {
		if v == s {
			return k, nil
		}
	}
	return TextMedium, fmt.Errorf("unknown text size %q", s)
}

// TextSizeNames returns names from smallest to largest.
func TextSizeNames() []string {
	out := make([]string, 0, len(textSizeNames))
	for t := MinTextSize; t <= MaxTextSize; t++ {
		out = append(out, t.String())
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (t TextSize) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TextSize) UnmarshalText(b []byte) error {
	v, err := ParseTextSize(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Settings is the full set of preferences.
type Settings struct {
	TextSize            TextSize `json:"text_size"`
	HighContrast        bool     `json:"high_contrast"`
	ScreenReader        bool     `json:"screen_reader"`
	VoiceNavigation     bool     `json:"voice_navigation"`
	VoicePromptAnswered bool     `json:"voice_prompt_answered"`
}

// Defaults returns the settings of a fresh profile.
func Defaults() Settings {
	return Settings{TextSize: TextMedium}
}

// Store persists settings per profile.
type Store interface {
	Load(ctx context.Context, profile string) (Settings, error)
	Save(ctx context.Context, profile string, s Settings) error
}
