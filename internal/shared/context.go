package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the Redis-backed session to the request
// context. The session middleware sets it once per request; handlers and the
// CSRF layer share that single record.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the request session, or nil outside the session
// middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
