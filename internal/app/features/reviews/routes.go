package reviews

import (
	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
)

// Routes mounts the review endpoints under the base path (typically
// "/review" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/get-reviews-by-movie/{movieId}", h.HandleByMovie)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/add/{movieId}", h.HandleAdd)
		pr.Patch("/update/{reviewID}", h.HandleUpdate)
		pr.Delete("/delete/{reviewID}", h.HandleDelete)
		pr.Post("/add-upvote/{movieId}/{reviewID}", h.HandleUpvote)
		pr.Post("/add-downvote/{movieId}/{reviewID}", h.HandleDownvote)
	})

	return r
}
