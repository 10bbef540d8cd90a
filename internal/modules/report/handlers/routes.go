package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers the evaluation and dossier routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Post("/evaluate", h.HandleEvaluate)

		r.Route("/dossiers", func(r chi.Router) {
			r.Post("/", h.HandleCreateDossier)
			r.Get("/", h.HandleListDossiers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.HandleGetDossier)
				r.Put("/", h.HandleUpdateDossier)
				r.Delete("/", h.HandleDeleteDossier)
				r.Post("/evaluate", h.HandleEvaluateDossier)
				r.Get("/report", h.HandleLatestReport)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/{id}", h.HandleGetReport)
		})
	})
}
