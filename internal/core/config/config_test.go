package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, DefaultProfile, cfg.Profile)
	assert.Equal(t, time.Second, cfg.Voice.Cooldown)
	assert.Equal(t, 5, cfg.Notifications.MaxToasts)
	assert.Equal(t, []string{"**"}, cfg.Notifications.Events)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, ThemeDefault, cfg.TUI.Theme)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
profile: seller-7
server:
  addr: ":9000"
voice:
  cooldown: 1500ms
  tts_command: ["espeak", "-s", "150"]
notifications:
  events: ["order.*", "inquiry.received"]
  toast_ttl: 2s
kafka:
  brokers: ["localhost:9092"]
tui:
  theme: high-contrast
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "seller-7", cfg.Profile)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.Voice.Cooldown)
	assert.Equal(t, []string{"espeak", "-s", "150"}, cfg.Voice.TTSCommand)
	assert.Equal(t, []string{"order.*", "inquiry.received"}, cfg.Notifications.Events)
	assert.Equal(t, 2*time.Second, cfg.Notifications.ToastTTL)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "marketplace-events", cfg.Kafka.Topic, "unset fields keep defaults")
	assert.Equal(t, ThemeHighContrast, cfg.TUI.Theme)
	assert.Equal(t, 5, cfg.Notifications.MaxToasts)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "server: [not a map")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "negative cooldown", mutate: func(c *Config) { c.Voice.Cooldown = -time.Second }, wantErr: "voice.cooldown"},
		{
			name:    "restart bounds",
			mutate:  func(c *Config) { c.Voice.RestartMax = time.Millisecond },
			wantErr: "voice.restart_max",
		},
		{name: "toasts", mutate: func(c *Config) { c.Notifications.MaxToasts = 0 }, wantErr: "max_toasts"},
		{
			name: "kafka topic",
			mutate: func(c *Config) {
				c.Kafka.Brokers = []string{"localhost:9092"}
				c.Kafka.Topic = ""
			},
			wantErr: "kafka.topic",
		},
		{name: "theme", mutate: func(c *Config) { c.TUI.Theme = "neon" }, wantErr: "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
