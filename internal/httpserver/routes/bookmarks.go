package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/handlers"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.With(mw.RequireAuth).Get("/lookup", handlers.LookupBookmark(d))
		r.With(mw.RequireAuth, mw.RequireCSRF).Post("/", handlers.SaveBookmark(d))
		r.With(mw.RequireAuth, mw.RequireCSRF).Put("/", handlers.UpdateBookmark(d))
		r.With(mw.RequireAuth, mw.RequireCSRF).Delete("/", handlers.DeleteBookmark(d))
	})
}
