package movies

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleUpdateMovie handles PATCH /movie/update-movie/{movieID}. A new
// poster file is required; it is uploaded before the old one is released,
// and the database is only updated once both remote operations are
// confirmed.
func (h *Handler) HandleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	movie, err := h.Movies.GetByID(r.Context(), movieID)
	if errors.Is(err, moviestore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Movie not found")
		return
	}
	if err != nil {
		h.Log.Error("load movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	form, msg := parseMovieForm(r.FormValue)
	if msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	if msg := form.validate(false); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	upd := moviestore.Update{
		Title:       form.Title,
		Storyline:   form.Storyline,
		Director:    form.Director,
		ReleaseDate: form.ReleaseDate,
		Type:        form.Type,
		Genres:      form.Genres,
		Tags:        form.Tags,
		Cast:        form.Cast,
		Language:    form.Language,
	}

	file, _, err := r.FormFile("poster")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Missing Poster")
		return
	}
	defer file.Close()

	poster, err := h.Media.UploadPoster(r.Context(), file)
	if err != nil {
		h.Log.Error("upload replacement poster", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not upload the poster")
		return
	}
	if movie.Poster != nil && movie.Poster.PublicID != "" {
		if err := h.Media.Destroy(r.Context(), movie.Poster.PublicID, media.KindImage); err != nil {
			h.Log.Error("release old poster", zap.String("public_id", movie.Poster.PublicID), zap.Error(err))
			// The new upload must not leak either.
			h.destroyAsset(r, poster.PublicID, media.KindImage)
			httpjson.Error(w, releaseStatus(err), "Could not replace the poster")
			return
		}
	}
	upd.Poster = &models.MediaAsset{URL: poster.URL, PublicID: poster.PublicID, Responsive: poster.Responsive}

	if err := h.Movies.Update(r.Context(), movieID, upd); err != nil {
		if errors.Is(err, moviestore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Movie not found")
			return
		}
		h.Log.Error("update movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"movie": map[string]any{
			"id":    movieID.Hex(),
			"title": form.Title,
		},
		"message": "Movie updated successfully",
	})
}
