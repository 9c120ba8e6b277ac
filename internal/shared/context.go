package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request session for downstream
// handlers and the CSRF check.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session placed by the session
// middleware, or nil when the request never passed through it.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
