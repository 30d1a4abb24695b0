package movies

import (
	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/domain/models"
)

// Routes mounts the movie endpoints under the base path (typically "/movie"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public browsing.
	r.Get("/latest-uploads", h.HandleLatestUploads)
	r.Get("/single/{movieId}", h.HandleSingleMovie)
	r.Get("/top-rated", h.HandleTopRated)

	// Signed-in users.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/like-movie", h.HandleLikeMovie)
	})

	// Admin catalog management.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/upload-trailer", h.HandleUploadTrailer)
		pr.Post("/create-movie", h.HandleCreateMovie)
		pr.Patch("/update-movie/{movieID}", h.HandleUpdateMovie)
		pr.Delete("/{movieID}", h.HandleDeleteMovie)
		pr.Get("/all-movies", h.HandleAllMovies)
		pr.Post("/get-movie-names-list", h.HandleMovieNames)
	})

	return r
}
