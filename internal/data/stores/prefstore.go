// Package stores implements persistence interfaces over the SQLite database.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/handsandhope/hope/internal/core/a11y"
	"github.com/handsandhope/hope/internal/data/db"
)

// busyRetries bounds how often a write is retried after SQLITE_BUSY once
// the driver's own busy timeout has expired.
const busyRetries = 3

// PrefStore implements a11y.Store using SQLite.
type PrefStore struct {
	db  *db.DB
	now func() time.Time
}

var _ a11y.Store = (*PrefStore)(nil)

// NewPrefStore creates a new SQLite-backed preference store.
func NewPrefStore(db *db.DB) *PrefStore {
	return &PrefStore{db: db, now: time.Now}
}

// Load returns the settings saved for profile, or a11y.Defaults when the
// profile has never been saved.
func (s *PrefStore) Load(ctx context.Context, profile string) (a11y.Settings, error) {
	var raw string
	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT settings FROM preferences WHERE profile = ?", profile,
	).Scan(&raw)
	if IsNotFoundError(err) {
		return a11y.Defaults(), nil
	}
	if err != nil {
		return a11y.Settings{}, fmt.Errorf("load preferences %q: %w", profile, err)
	}

	settings := a11y.Defaults()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return a11y.Settings{}, fmt.Errorf("load preferences %q unmarshal: %w", profile, err)
	}
	return settings, nil
}

// Save creates or replaces the settings for profile.
func (s *PrefStore) Save(ctx context.Context, profile string, settings a11y.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("save preferences %q marshal: %w", profile, err)
	}

	now := s.now().UnixNano()
	write := func() error {
		_, err := s.db.Conn().ExecContext(ctx, `
			INSERT INTO preferences (profile, settings, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(profile) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at
		`, profile, string(data), now, now)
		if err != nil && !IsBusyError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), busyRetries), ctx)
	if err := backoff.Retry(write, b); err != nil {
		return fmt.Errorf("save preferences %q: %w", profile, err)
	}
	return nil
}

// Delete removes the saved settings and voice prompt history for profile.
// Deleting an unknown profile is not an error.
func (s *PrefStore) Delete(ctx context.Context, profile string) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM preferences WHERE profile = ?", profile); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM voice_prompt_answers WHERE profile = ?", profile)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete preferences %q: %w", profile, err)
	}
	return nil
}

// Profiles lists saved profiles in name order.
func (s *PrefStore) Profiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT profile FROM preferences ORDER BY profile")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
