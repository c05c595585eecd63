package logging

import "context"

type contextKey string

const (
	profileKey   contextKey = "profile"
	requestIDKey contextKey = "request_id"
)

// WithProfile adds the accessibility profile being served to the context.
func WithProfile(ctx context.Context, profile string) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

// WithRequestID adds an HTTP request id to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Profile returns the profile stored by WithProfile, or "".
func Profile(ctx context.Context) string {
	p, _ := ctx.Value(profileKey).(string)
	return p
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
