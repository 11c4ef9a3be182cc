package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
	"github.com/linkhoard/linkhoard/internal/httpserver/handlers"
	"github.com/linkhoard/linkhoard/internal/httpserver/mw"
)

func init() { Register(registerImports) }

func registerImports(r chi.Router, d deps.Deps) {
	r.Route("/api/imports", func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Get("/", handlers.ListImports(d))
		r.With(mw.RequireCSRF).Post("/", handlers.RunImport(d))
		r.With(mw.RequireCSRF).Delete("/", handlers.UndoImport(d))
	})
}
