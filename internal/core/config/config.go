// Package config handles configuration loading and validation for hope.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProfile is the preference profile used when none is configured.
const DefaultProfile = "default"

// Config holds the application configuration.
type Config struct {
	Profile       string              `yaml:"profile"`
	Server        ServerConfig        `yaml:"server"`
	Voice         VoiceConfig         `yaml:"voice"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Database      DatabaseConfig      `yaml:"database"`
	TUI           TUIConfig           `yaml:"tui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `yaml:"metrics"`
}

// VoiceConfig configures speech recognition and confirmations.
type VoiceConfig struct {
	// Cooldown is the window after a processed yes/no answer during which
	// further results are ignored.
	Cooldown time.Duration `yaml:"cooldown"`
	// TTSCommand is the program used to speak confirmations. The text is
	// appended as the last argument. Empty disables spoken output.
	TTSCommand []string `yaml:"tts_command"`
	// RestartInitial and RestartMax bound the delay before a recognizer
	// restart after an error.
	RestartInitial time.Duration `yaml:"restart_initial"`
	RestartMax     time.Duration `yaml:"restart_max"`
}

// NotificationsConfig configures which marketplace events become
// notifications and how toasts are shown.
type NotificationsConfig struct {
	// Events lists glob patterns (doublestar syntax) matched against event
	// names, e.g. "order.*".
	Events    []string      `yaml:"events"`
	ToastTTL  time.Duration `yaml:"toast_ttl"`
	MaxToasts int           `yaml:"max_toasts"`
	BusBuffer int           `yaml:"bus_buffer"`
}

// KafkaConfig configures the optional marketplace event consumer.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Enabled reports whether a consumer should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// DatabaseConfig configures the preference database.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig configures the interactive notification center.
type TUIConfig struct {
	Theme        string `yaml:"theme"`
	PanelWidth   int    `yaml:"panel_width"`
	MouseEnabled bool   `yaml:"mouse"`
}

// Supported TUI themes.
const (
	ThemeDefault      = "default"
	ThemeHighContrast = "high-contrast"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Profile: DefaultProfile,
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 5 * time.Second,
			Metrics:         true,
		},
		Voice: VoiceConfig{
			Cooldown:       time.Second,
			RestartInitial: 250 * time.Millisecond,
			RestartMax:     10 * time.Second,
		},
		Notifications: NotificationsConfig{
			Events:    []string{"**"},
			ToastTTL:  4 * time.Second,
			MaxToasts: 5,
			BusBuffer: 256,
		},
		Kafka: KafkaConfig{
			Topic:   "marketplace-events",
			GroupID: "hope-notifications",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			Theme:        ThemeDefault,
			PanelWidth:   56,
			MouseEnabled: true,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Profile == "" {
		c.Profile = defaults.Profile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Voice.Cooldown == 0 {
		c.Voice.Cooldown = defaults.Voice.Cooldown
	}
	if c.Voice.RestartInitial == 0 {
		c.Voice.RestartInitial = defaults.Voice.RestartInitial
	}
	if c.Voice.RestartMax == 0 {
		c.Voice.RestartMax = defaults.Voice.RestartMax
	}
	if len(c.Notifications.Events) == 0 {
		c.Notifications.Events = defaults.Notifications.Events
	}
	if c.Notifications.ToastTTL == 0 {
		c.Notifications.ToastTTL = defaults.Notifications.ToastTTL
	}
	if c.Notifications.MaxToasts == 0 {
		c.Notifications.MaxToasts = defaults.Notifications.MaxToasts
	}
	if c.Notifications.BusBuffer == 0 {
		c.Notifications.BusBuffer = defaults.Notifications.BusBuffer
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = defaults.Kafka.Topic
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = defaults.Kafka.GroupID
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.PanelWidth == 0 {
		c.TUI.PanelWidth = defaults.TUI.PanelWidth
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Profile == "" {
		return fmt.Errorf("profile cannot be empty")
	}

	if c.Voice.Cooldown < 0 {
		return fmt.Errorf("voice.cooldown cannot be negative")
	}

	if c.Voice.RestartMax < c.Voice.RestartInitial {
		return fmt.Errorf("voice.restart_max must be at least voice.restart_initial")
	}

	if c.Notifications.MaxToasts < 1 {
		return fmt.Errorf("notifications.max_toasts must be at least 1")
	}

	if c.Notifications.BusBuffer < 1 {
		return fmt.Errorf("notifications.bus_buffer must be at least 1")
	}

	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if !isValidTheme(c.TUI.Theme) {
		return fmt.Errorf("tui.theme %q is not supported", c.TUI.Theme)
	}

	return nil
}

// DatabaseDir returns the directory holding the preference database.
func (c *Config) DatabaseDir() string {
	return c.DataDir
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", "hope.log")
}

func isValidTheme(theme string) bool {
	switch theme {
	case ThemeDefault, ThemeHighContrast:
		return true
	default:
		return false
	}
}
