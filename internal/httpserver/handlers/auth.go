package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
	"github.com/linkhoard/linkhoard/internal/logger"
)

type loginResponse struct {
	Token     string    `json:"token"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the admin password and issues a session. The token is
// returned in the body for API clients and set as an HttpOnly cookie for
// the browser UI.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(d.AdminPassword)) != 1 {
			d.Logger.Warn("failed login attempt", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid password"})
			return
		}

		s, err := d.Sessions.Create(r.Context(), d.SessionTTL)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     mw.SessionCookie,
			Value:    s.Token,
			Path:     "/",
			Expires:  s.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     s.Token,
			CSRFToken: s.CSRFToken,
			ExpiresAt: s.ExpiresAt,
		})
	}
}

func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s := mw.SessionFrom(r.Context()); s != nil {
			if err := d.Sessions.Delete(r.Context(), s.Token); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     mw.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// SessionInfo lets the UI probe its login state and recover the CSRF token
// after a page reload.
func SessionInfo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		if s == nil {
			writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": true,
			"csrf_token":    s.CSRFToken,
			"expires_at":    s.ExpiresAt,
		})
	}
}
