package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/handlers"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

func init() { Register(registerPublish) }

func registerPublish(r chi.Router, d deps.Deps) {
	r.With(mw.RequireAuth).Get("/api/publish", handlers.CheckPublished(d))
	r.With(mw.RequireAuth, mw.RequireCSRF).Post("/api/publish", handlers.PublishBookmark(d))
}
