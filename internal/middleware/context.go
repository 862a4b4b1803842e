package middleware

import (
	"context"

	"github.com/wecare-dev/wecare/internal/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the session injected by Protect. Handlers
// behind Protect can rely on it being present.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// WithSession injects a session; Protect uses it, and tests use it to stand
// up handlers without the full pipeline.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}
