package shared

import "context"

type sessionContextKey struct{}

type currentUserContextKey struct{}

// CurrentUser identifies the authenticated account for a request. It is
// placed in the request context by the auth middleware; core services never
// read it implicitly and take identifiers as explicit arguments instead.
type CurrentUser struct {
	ID       int64
	Username string
	Role     Role
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithCurrentUser stores the authenticated user in context.
func ContextWithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserContextKey{}, user)
}

// CurrentUserFromContext extracts the authenticated user, if any.
func CurrentUserFromContext(ctx context.Context) (CurrentUser, bool) {
	user, ok := ctx.Value(currentUserContextKey{}).(CurrentUser)
	return user, ok
}
