package mw

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/linkhoard/linkhoard/internal/session"
)

// SessionCookie is the cookie carrying the session token for browser
// clients; API clients send the token as a Bearer credential instead.
const SessionCookie = "linkhoard_session"

// CSRFHeader carries the per-session CSRF token on mutating requests.
const CSRFHeader = "X-CSRF-Token"

type ctxKey int

const sessionKey ctxKey = iota

// Authenticate resolves the session token (Authorization: Bearer first,
// then the session cookie) and attaches the session to the request context.
// Requests without a valid session pass through unauthenticated; access
// decisions belong to RequireAuth.
func Authenticate(sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := requestToken(r); token != "" {
				if s, err := sessions.Get(r.Context(), token); err == nil && s != nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionKey, s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFrom returns the authenticated session, nil when the request is
// anonymous.
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFrom(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRF checks the CSRF header against the session's token. It runs
// after RequireAuth, so a missing session is already handled.
func RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		sent := r.Header.Get(CSRFHeader)
		if sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(s.CSRFToken)) != 1 {
			writeJSONError(w, http.StatusForbidden, "invalid security token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
