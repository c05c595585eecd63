package styles

import (
	"testing"

	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/stretchr/testify/assert"
)

func TestThemeFor(t *testing.T) {
	assert.Equal(t, themes[ThemeDefault], ThemeFor(ThemeDefault, false))
	assert.Equal(t, themes[ThemeHighContrast], ThemeFor(ThemeDefault, true))
	assert.Equal(t, themes[ThemeHighContrast], ThemeFor(ThemeHighContrast, false))
	assert.Equal(t, themes[ThemeDefault], ThemeFor("solarized", false))
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{ThemeDefault, ThemeHighContrast}, ThemeNames())
}

func TestKindIcon(t *testing.T) {
	assert.Equal(t, IconError, KindIcon(notify.KindError))
	assert.Equal(t, IconNotifyInfo, KindIcon(notify.Kind("unknown")))
}

func TestGlamourStyle_FollowsTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[ThemeDefault]) })

	SetTheme(themes[ThemeHighContrast])
	cfg := GlamourStyle()
	if assert.NotNil(t, cfg.Document.Color) {
		assert.Equal(t, "#ffffff", *cfg.Document.Color)
	}
	assert.Nil(t, cfg.H1.BackgroundColor)
}
