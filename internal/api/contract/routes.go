package contract

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers contract routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/contracts", func(r chi.Router) {
		r.Get("/", h.ListContracts)
		r.Get("/{id}", h.GetContract)
		r.Post("/{id}/sign", h.SignContract)
		r.Get("/{id}/document", h.GetDocument)
	})
}
