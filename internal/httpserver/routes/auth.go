package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/handlers"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:      d.LoginRateBurst,
		Interval:   d.LoginRateInterval,
		TrustProxy: d.TrustProxy,
	})).Post("/api/auth/login", handlers.Login(d))

	r.With(mw.RequireAuth).Post("/api/auth/logout", handlers.Logout(d))
	r.Get("/api/auth/session", handlers.SessionInfo(d))
}
