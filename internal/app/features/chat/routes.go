package chat

import (
	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
)

// Routes mounts the chat endpoint at the base path (typically "/chat" from
// bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleChat)
	})

	return r
}
