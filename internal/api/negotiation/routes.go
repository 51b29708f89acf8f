package negotiation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers negotiation and template routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/negotiations", func(r chi.Router) {
		r.Post("/", h.CreateNegotiation)
		r.Get("/", h.ListNegotiations)
		r.Get("/{id}", h.GetNegotiation)
		r.Post("/{id}/cancel", h.CancelNegotiation)
		r.Post("/{id}/join", h.JoinNegotiation)
		r.Post("/{id}/terms", h.AgreeTerms)
		r.Post("/{id}/messages", h.SendMessage)
		r.Get("/{id}/messages", h.ListMessages)
		r.Post("/{id}/finalize", h.Finalize)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.ListTemplates)
		r.Get("/{id}", h.GetTemplate)
	})
}
