package a11y

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data    map[string]Settings
	saveErr error
	saves   int
}

func (m *memStore) Load(_ context.Context, profile string) (Settings, error) {
	if s, ok := m.data[profile]; ok {
		return s, nil
	}
	return Defaults(), nil
}

func (m *memStore) Save(_ context.Context, profile string, s Settings) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.data == nil {
		m.data = map[string]Settings{}
	}
	m.data[profile] = s
	return nil
}

func TestController_TextSize_bounds(t *testing.T) {
	c := NewController(nil, "default", Defaults(), zerolog.Nop())

	assert.True(t, c.IncreaseTextSize())
	assert.True(t, c.IncreaseTextSize())
	assert.Equal(t, TextXLarge, c.Settings().TextSize)
	assert.False(t, c.IncreaseTextSize())
	assert.Equal(t, TextXLarge, c.Settings().TextSize)

	for range 3 {
		assert.True(t, c.DecreaseTextSize())
	}
	assert.Equal(t, TextSmall, c.Settings().TextSize)
	assert.False(t, c.DecreaseTextSize())
}

func TestController_writesThrough(t *testing.T) {
	store := &memStore{}
	c := NewController(store, "buyer", Defaults(), zerolog.Nop())

	c.SetHighContrast(true)
	c.SetHighContrast(true) // unchanged, no save

	assert.Equal(t, 1, store.saves)
	assert.True(t, store.data["buyer"].HighContrast)
}

func TestController_saveErrorIsNotFatal(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	c := NewController(store, "buyer", Defaults(), zerolog.Nop())

	c.SetScreenReader(true)
	assert.True(t, c.Settings().ScreenReader)
}

func TestController_Reset_keepsVoiceState(t *testing.T) {
	c := NewController(nil, "default", Defaults(), zerolog.Nop())
	c.SetVoiceNavigation(true)
	c.MarkPromptAnswered()
	c.SetHighContrast(true)
	c.IncreaseTextSize()

	c.Reset()

	s := c.Settings()
	assert.Equal(t, TextMedium, s.TextSize)
	assert.False(t, s.HighContrast)
	assert.True(t, s.VoiceNavigation)
	assert.True(t, s.VoicePromptAnswered)
}

func TestController_OnChange(t *testing.T) {
	c := NewController(nil, "default", Defaults(), zerolog.Nop())

	var got []Settings
	c.OnChange(func(s Settings) { got = append(got, s) })

	c.SetHighContrast(true)
	c.DecreaseTextSize()
	c.DecreaseTextSize() // already small

	require.Len(t, got, 2)
	assert.Equal(t, TextSmall, got[1].TextSize)
}

func TestLoad_fallsBackToDefaults(t *testing.T) {
	c := Load(context.Background(), nil, "x", zerolog.Nop())
	assert.Equal(t, Defaults(), c.Settings())

	store := &memStore{data: map[string]Settings{"x": {TextSize: TextLarge}}}
	c = Load(context.Background(), store, "x", zerolog.Nop())
	assert.Equal(t, TextLarge, c.Settings().TextSize)
}

func TestTextSize_JSON(t *testing.T) {
	b, err := json.Marshal(Settings{TextSize: TextXLarge})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"text_size":"x-large"`)

	var s Settings
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, TextXLarge, s.TextSize)

	assert.Error(t, json.Unmarshal([]byte(`{"text_size":"huge"}`), &s))
}
