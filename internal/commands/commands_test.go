package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/data/db"
	"github.com/handsandhope/hope/internal/data/stores"
	"github.com/handsandhope/hope/internal/tui"
)

type registrar interface {
	Register(app *cli.Command) *cli.Command
}

func runCLI(t *testing.T, cmd registrar, args ...string) (string, error) {
	t.Helper()

	exiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = exiter })

	var buf bytes.Buffer
	app := &cli.Command{
		Name:      "hope",
		Writer:    &buf,
		ErrWriter: io.Discard,
	}
	cmd.Register(app)
	err := app.Run(context.Background(), append([]string{"hope"}, args...))
	return buf.String(), err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig(t)
	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewApp(cfg, database, tui.BuildInfo{Version: "test"})
}

func TestOpenDatabase_RecoversCorruption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("garbage!"), 128), 0o644))

	opts := db.DefaultOpenOptions()
	opts.PingAttempts = 1
	database, err := OpenDatabase(dir, opts, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	backups, err := filepath.Glob(path + ".corrupt.*")
	require.NoError(t, err)
	assert.NotEmpty(t, backups)

	_, err = NewApp(testConfig(t), database, tui.BuildInfo{}).Prefs.Profiles(context.Background())
	assert.NoError(t, err)
}

func TestEventsList(t *testing.T) {
	app := &App{Config: testConfig(t)}
	app.Config.Notifications.Events = []string{"order.*"}

	out, err := runCLI(t, NewEventsCmd(&Flags{}, app), "events", "list", "--json")
	require.NoError(t, err)

	var infos []eventInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Equal(t, []eventInfo{
		{Name: "account.verified", Routed: false},
		{Name: "inquiry.received", Routed: false},
		{Name: "order.placed", Routed: true},
		{Name: "order.shipped", Routed: true},
		{Name: "product.approved", Routed: false},
		{Name: "product.low-stock", Routed: false},
	}, infos)
}

func TestEventsPublish_HTTP(t *testing.T) {
	var got eventbus.RawEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cmd := NewEventsCmd(&Flags{}, &App{Config: testConfig(t)})
	cmd.reader.Stdin = strings.NewReader(`{"type":"order.placed","payload":{"order_id":"9","items":1,"total":5}}`)

	out, err := runCLI(t, cmd, "events", "publish", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Published order.placed")
	assert.Equal(t, "order.placed", got.Type)
	assert.JSONEq(t, `{"order_id":"9","items":1,"total":5}`, string(got.Payload))
}

func TestEventsPublish_ServerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"event publishing is not enabled"}`))
	}))
	defer srv.Close()

	cmd := NewEventsCmd(&Flags{}, &App{Config: testConfig(t)})
	cmd.reader.Stdin = strings.NewReader(`{"type":"order.shipped","payload":{"order_id":"9"}}`)

	_, err := runCLI(t, cmd, "events", "publish", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "not enabled")
}

func TestEventsPublish_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "missing type", input: `{"payload":{}}`, want: "invalid event"},
		{name: "unknown type", input: `{"type":"order.refunded","payload":{}}`, want: "order.refunded"},
		{name: "bad payload", input: `{"type":"order.placed","payload":{"items":"two"}}`, want: "order.placed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewEventsCmd(&Flags{}, &App{Config: testConfig(t)})
			cmd.reader.Stdin = strings.NewReader(tt.input)

			_, err := runCLI(t, cmd, "events", "publish", "--url", "http://127.0.0.1:1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type fakeProducer struct {
	events []eventbus.Event
	closed bool
	err    error
}

func (f *fakeProducer) Publish(_ context.Context, event eventbus.Event, _ any) error {
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestEventsPublish_Kafka(t *testing.T) {
	app := &App{Config: testConfig(t)}
	app.Config.Kafka.Brokers = []string{"localhost:9092"}

	prod := &fakeProducer{}
	cmd := NewEventsCmd(&Flags{}, app)
	cmd.newProducer = func() eventPublisher { return prod }
	cmd.reader.Stdin = strings.NewReader(`{"type":"inquiry.received","payload":{"product_name":"Basket"}}`)

	out, err := runCLI(t, cmd, "events", "publish", "--kafka")
	require.NoError(t, err)
	assert.Contains(t, out, "marketplace-events")
	assert.Equal(t, []eventbus.Event{eventbus.EventInquiryReceived}, prod.events)
	assert.True(t, prod.closed)
}

func TestEventsPublish_KafkaErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		cmd := NewEventsCmd(&Flags{}, &App{Config: testConfig(t)})
		cmd.reader.Stdin = strings.NewReader(`{"type":"order.placed","payload":{}}`)

		_, err := runCLI(t, cmd, "events", "publish", "--kafka")
		assert.ErrorContains(t, err, "kafka.brokers")
	})

	t.Run("write fails", func(t *testing.T) {
		app := &App{Config: testConfig(t)}
		app.Config.Kafka.Brokers = []string{"localhost:9092"}
		prod := &fakeProducer{err: errors.New("leader not available")}
		cmd := NewEventsCmd(&Flags{}, app)
		cmd.newProducer = func() eventPublisher { return prod }
		cmd.reader.Stdin = strings.NewReader(`{"type":"order.placed","payload":{}}`)

		_, err := runCLI(t, cmd, "events", "publish", "--kafka")
		assert.ErrorContains(t, err, "leader not available")
		assert.True(t, prod.closed)
	})
}

func TestPrefs_ShowResetProfiles(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()

	out, err := runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "show", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"profile": "default",
		"text_size": "medium",
		"high_contrast": false,
		"screen_reader": false,
		"voice_navigation": false,
		"voice_prompt_answered": false
	}`, out)

	ctrl := app.Settings(ctx)
	ctrl.SetHighContrast(true)
	ctrl.SetVoiceNavigation(true)
	ctrl.MarkPromptAnswered()

	out, err = runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "profiles")
	require.NoError(t, err)
	assert.Equal(t, "default\n", out)

	out, err = runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "All settings have been reset")

	s := app.Settings(ctx).Settings()
	assert.False(t, s.HighContrast)
	assert.True(t, s.VoiceNavigation)
	assert.True(t, s.VoicePromptAnswered)

	_, err = runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "reset", "--all")
	require.NoError(t, err)

	profiles, err := app.Prefs.Profiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Equal(t, a11y.Defaults(), app.Settings(ctx).Settings())
}

func TestPrefs_ShowOtherProfileText(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Prefs.Save(context.Background(), "kiosk", a11y.Settings{
		TextSize:     a11y.TextXLarge,
		ScreenReader: true,
	}))

	out, err := runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "show", "--profile", "kiosk")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile kiosk")
	assert.Contains(t, out, "x-large")
	assert.Contains(t, out, "on")
	assert.NotContains(t, out, "Last prompt answer")

	require.NoError(t, app.Prompts.Record(context.Background(), stores.PromptAnswer{
		Profile:    "kiosk",
		Outcome:    "accepted",
		Transcript: "yes please",
		AnsweredAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}))

	out, err = runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "show", "--profile", "kiosk")
	require.NoError(t, err)
	assert.Contains(t, out, `accepted ("yes please")`)
}

func TestPrefsForm_Settings(t *testing.T) {
	base := a11y.Defaults()
	f := newPrefsForm(base)
	f.textSize = "large"
	f.voiceNavigation = true

	s, err := f.settings()
	require.NoError(t, err)
	assert.Equal(t, a11y.TextLarge, s.TextSize)
	assert.True(t, s.VoiceNavigation)
	assert.True(t, s.VoicePromptAnswered)

	unchanged, err := newPrefsForm(base).settings()
	require.NoError(t, err)
	assert.Equal(t, base, unchanged)

	f.textSize = "huge"
	_, err = f.settings()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, err := runCLI(t, NewConfigValidateCmd(&Flags{Config: testConfig(t)}), "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
	})

	t.Run("warnings", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Voice.TTSCommand = []string{"definitely-not-a-speech-program"}

		out, err := runCLI(t, NewConfigValidateCmd(&Flags{Config: cfg}), "config", "validate", "--format", "json")
		require.NoError(t, err)

		var r validationReport
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.True(t, r.Valid)
		require.Len(t, r.Warnings, 1)
		assert.Equal(t, "Voice", r.Warnings[0].Category)
	})

	t.Run("load error", func(t *testing.T) {
		flags := &Flags{Config: testConfig(t), ConfigErr: errors.New("invalid config: notifications.max_toasts must be at least 1")}

		out, err := runCLI(t, NewConfigValidateCmd(flags), "config", "validate", "--format", "json")
		require.Error(t, err)

		var r validationReport
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.False(t, r.Valid)
		assert.Equal(t, []string{"invalid config: notifications.max_toasts must be at least 1"}, r.Errors)
	})
}

func TestDoc(t *testing.T) {
	out, err := runCLI(t, NewDocCmd(&Flags{}), "doc", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "127.0.0.1:8080")
	assert.Contains(t, out, "toast_ttl: 4s")

	var parsed config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, config.DefaultConfig().Notifications, parsed.Notifications)

	out, err = runCLI(t, NewDocCmd(&Flags{}), "doc", "events")
	require.NoError(t, err)
	for _, ev := range demoEvents {
		assert.Contains(t, out, "## "+string(ev.event))
	}
}

func TestVoiceCommandsRaw(t *testing.T) {
	out, err := runCLI(t, NewVoiceCmd(&Flags{}, &App{Config: testConfig(t)}), "voice", "commands", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Voice commands"))
	assert.Contains(t, out, "`go to cart`")
}

func TestPrefs_RejectsBadProfile(t *testing.T) {
	app := testApp(t)

	_, err := runCLI(t, NewPrefsCmd(&Flags{}, app), "prefs", "show", "--profile", "Front Desk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")

	profiles, err := app.Prefs.Profiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestDBRollback(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	conn := app.DB.Conn()

	saved := a11y.Defaults()
	saved.HighContrast = true
	require.NoError(t, app.Prefs.Save(ctx, "default", saved))

	out, err := runCLI(t, NewDBCmd(&Flags{}, app), "db", "rollback")
	require.NoError(t, err)
	assert.Contains(t, out, "Reverted 1 migration(s)")

	_, err = conn.ExecContext(ctx, "SELECT 1 FROM voice_prompt_answers LIMIT 0")
	require.Error(t, err, "newest migration is reverted")

	loaded, err := app.Prefs.Load(ctx, "default")
	require.NoError(t, err)
	assert.True(t, loaded.HighContrast, "preferences survive the rollback")

	_, err = runCLI(t, NewDBCmd(&Flags{}, app), "db", "rollback", "--steps", "5")
	assert.ErrorContains(t, err, "only 1 are applied")
}
