package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopledger/shopledger/internal/shared"
)

// Session value keys written at login and read back per request.
const (
	sessionKeyUsername = "username"
	sessionKeyRole     = "role"
)

// Middleware resolves the signed-in user from the session and enforces role
// requirements for HTTP routes. Core services stay role-agnostic; this is the
// only place role checks happen.
type Middleware struct {
	Logger *slog.Logger
}

// RequireUser ensures a signed-in user and stores it in the request context.
func (m Middleware) RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := m.currentUser(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			ctx := shared.ContextWithCurrentUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the signed-in user holds one of the given roles.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := m.currentUser(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[user.Role]; !ok {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			ctx := shared.ContextWithCurrentUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) currentUser(r *http.Request) (shared.CurrentUser, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return shared.CurrentUser{}, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", sess.User()))
		}
		return shared.CurrentUser{}, false
	}
	role, ok := shared.ParseRole(sess.Get(sessionKeyRole))
	if !ok {
		return shared.CurrentUser{}, false
	}
	return shared.CurrentUser{
		ID:       id,
		Username: sess.Get(sessionKeyUsername),
		Role:     role,
	}, true
}
