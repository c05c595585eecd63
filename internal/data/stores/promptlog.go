package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/handsandhope/hope/internal/data/db"
)

// PromptAnswer records how a user answered the voice navigation prompt.
type PromptAnswer struct {
	Profile    string
	Outcome    string
	Transcript string
	AnsweredAt time.Time
}

// PromptLog stores voice prompt answers for later review.
type PromptLog struct {
	db *db.DB
}

// NewPromptLog creates a new SQLite-backed prompt log.
func NewPromptLog(db *db.DB) *PromptLog {
	return &PromptLog{db: db}
}

// Record appends an answer.
func (l *PromptLog) Record(ctx context.Context, a PromptAnswer) error {
	_, err := l.db.Conn().ExecContext(ctx,
		"INSERT INTO voice_prompt_answers (profile, outcome, transcript, answered_at) VALUES (?, ?, ?, ?)",
		a.Profile, a.Outcome, a.Transcript, a.AnsweredAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record prompt answer: %w", err)
	}
	return nil
}

// Recent returns up to limit answers for profile, newest first.
func (l *PromptLog) Recent(ctx context.Context, profile string, limit int) ([]PromptAnswer, error) {
	rows, err := l.db.Conn().QueryContext(ctx, `
		SELECT profile, outcome, transcript, answered_at
		FROM voice_prompt_answers
		WHERE profile = ?
		ORDER BY answered_at DESC, id DESC
		LIMIT ?
	`, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompt answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PromptAnswer
	for rows.Next() {
		var (
			a  PromptAnswer
			ts int64
		)
		if err := rows.Scan(&a.Profile, &a.Outcome, &a.Transcript, &ts); err != nil {
			return nil, fmt.Errorf("scan prompt answer: %w", err)
		}
		a.AnsweredAt = time.Unix(0, ts)
		out = append(out, a)
	}
	return out, rows.Err()
}
