package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Index)
	r.Post("/get", h.Chat)
	r.Get("/ready", h.Ready)
}
