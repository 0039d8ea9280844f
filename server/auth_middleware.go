package server

import (
	"context"
	"net/http"

	"github.com/opskit/admin-console/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the authenticated session
	ContextKeySession ContextKey = "session"
)

// RequireSession is the navigation guard for the gated subtree. It reads
// the session store's current state at request time; any request without an
// active session is redirected to the login page. The cookie must carry a
// validly signed session id AND match the active session, so a stale cookie
// from before a logout doesn't authenticate.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				redirectSuccess(w, r, RouteLogin)
				return
			}

			sid, err := s.cookies.Verify(cookie.Value)
			if err != nil {
				redirectWithError(w, r, RouteLogin, "Session expired")
				return
			}

			current := s.sessions.Current()
			if current == nil || current.SID != sid {
				redirectWithError(w, r, RouteLogin, "Session expired")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, current)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromContext returns the session injected by RequireSession.
func sessionFromContext(ctx context.Context) *session.Session {
	current, _ := ctx.Value(ContextKeySession).(*session.Session)
	return current
}

// requestSession resolves the session for this request: the cookie must
// verify and carry the sid of the store's active session. The store alone is
// not enough - another client's (or a restored) session must not be
// attributed to a request that doesn't hold the cookie.
func (s *Server) requestSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sid, err := s.cookies.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	current := s.sessions.Current()
	if current == nil || current.SID != sid {
		return nil
	}
	return current
}
