package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/salud-red/appointment-service/internal/session"
)

// SessionCookie is the console session cookie name.
const SessionCookie = "console_session"

const sessionKey ctxKey = "console_session_data"

// SessionFromContext extracts the console session from context.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok
}

// ContextWithSession adds a console session to the context. Exported so
// other packages can build test contexts.
func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionMiddleware is the console variant of the auth chain: no cookie or
// unknown session redirects to the login page. The session value itself is
// trusted once found in the store.
func SessionMiddleware(sessions session.Getter, loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}

			sess, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || sess == nil {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSessionRoles enforces a role allowlist on console routes. Denied
// users are sent back to the login page rather than given a JSON error.
func RequireSessionRoles(loginURL string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			if len(roles) > 0 && !hasRole(sess.Role, roles) {
				http.Redirect(w, r, loginURL+"?error="+strings.ReplaceAll("insufficient role", " ", "+"), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
