package movies

import (
	"net/http"

	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart bodies (videos included).
const maxUploadBytes = 512 << 20

// HandleUploadTrailer handles POST /movie/upload-trailer. The trailer is
// uploaded first so the client can pass its url/public_id to create-movie.
func (h *Handler) HandleUploadTrailer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("video")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Video file is missing!")
		return
	}
	defer file.Close()

	asset, err := h.Media.UploadTrailer(r.Context(), file)
	if err != nil {
		h.Log.Error("upload trailer", zap.String("filename", header.Filename), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not upload the trailer")
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]string{
		"url":       asset.URL,
		"public_id": asset.PublicID,
	})
}

// HandleCreateMovie handles POST /movie/create-movie. The poster arrives as
// a multipart file; genres, tags, cast and trailer as JSON form fields.
func (h *Handler) HandleCreateMovie(w http.ResponseWriter, r *http.Request) {
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
	if msg := form.validate(true); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	file, _, err := r.FormFile("poster")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Missing Poster")
		return
	}
	defer file.Close()

	poster, err := h.Media.UploadPoster(r.Context(), file)
	if err != nil {
		h.Log.Error("upload poster", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Could not upload the poster")
		return
	}

	movie, err := h.Movies.Create(r.Context(), models.Movie{
		Title:       form.Title,
		Storyline:   form.Storyline,
		Director:    form.Director,
		ReleaseDate: form.ReleaseDate,
		Type:        form.Type,
		Genres:      form.Genres,
		Tags:        form.Tags,
		Cast:        form.Cast,
		Language:    form.Language,
		Poster:      &models.MediaAsset{URL: poster.URL, PublicID: poster.PublicID, Responsive: poster.Responsive},
		Trailer:     form.Trailer,
	})
	if err != nil {
		h.Log.Error("create movie", zap.Error(err))
		// The poster is already in Cloudinary; release it so it does not leak.
		h.destroyAsset(r, poster.PublicID, media.KindImage)
		httpjson.Error(w, http.StatusInternalServerError, "Could not create the movie")
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]any{
		"movie": map[string]any{
			"id":    movie.ID.Hex(),
			"title": movie.Title,
		},
		"message": "Movie created successfully",
	})
}
