package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies profile and request_id from the event context into log
// events. Events without a context are left alone.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if p := Profile(ctx); p != "" {
		e.Str("profile", p)
	}
	if id := RequestID(ctx); id != "" {
		e.Str("request_id", id)
	}
}
