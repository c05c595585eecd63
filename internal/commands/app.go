package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/data/db"
	"github.com/handsandhope/hope/internal/data/stores"
	"github.com/handsandhope/hope/internal/tui"
)

// App holds the dependencies shared by every command. main allocates it
// before the CLI runs and populates it in the Before hook.
type App struct {
	Config  *config.Config
	DB      *db.DB
	Prefs   *stores.PrefStore
	Prompts *stores.PromptLog
	Build   tui.BuildInfo
}

// NewApp wires the stores over database.
func NewApp(cfg *config.Config, database *db.DB, build tui.BuildInfo) *App {
	return &App{
		Config:  cfg,
		DB:      database,
		Prefs:   stores.NewPrefStore(database),
		Prompts: stores.NewPromptLog(database),
		Build:   build,
	}
}

// Settings loads the accessibility controller for the configured profile.
func (a *App) Settings(ctx context.Context) *a11y.Controller {
	return a11y.Load(ctx, a.Prefs, a.Config.Profile, logging.Component("a11y"))
}

// OpenDatabase opens the preference database in dir. A corrupted file is
// moved aside and replaced with a fresh one.
func OpenDatabase(dir string, opts db.OpenOptions, log zerolog.Logger) (*db.DB, error) {
	database, err := db.Open(dir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Str("dir", dir).Msg("preference database is corrupted, starting fresh")
	if rerr := stores.RecoverFromCorruption(dir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w (open: %w)", rerr, err)
	}
	return db.Open(dir, opts)
}
