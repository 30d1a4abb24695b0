package movies

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// movieSummary is the card shape used by list endpoints.
type movieSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Poster     string   `json:"poster,omitempty"`
	Responsive []string `json:"responsivePosters,omitempty"`
	Type       string   `json:"type"`
	Genres     []string `json:"genres,omitempty"`
}

func summarize(m *models.Movie) movieSummary {
	s := movieSummary{
		ID:     m.ID.Hex(),
		Title:  m.Title,
		Type:   m.Type,
		Genres: m.Genres,
	}
	if m.Poster != nil {
		s.Poster = m.Poster.URL
		s.Responsive = m.Poster.Responsive
	}
	return s
}

// HandleLatestUploads handles GET /movie/latest-uploads.
func (h *Handler) HandleLatestUploads(w http.ResponseWriter, r *http.Request) {
	rated, err := h.Movies.LatestUploads(r.Context())
	if err != nil {
		h.Log.Error("latest uploads", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type latestMovie struct {
		movieSummary
		Trailer   string `json:"trailer,omitempty"`
		Storyline string `json:"storyline"`
	}
	out := make([]latestMovie, 0, len(rated))
	for i := range rated {
		m := &rated[i].Movie
		lm := latestMovie{movieSummary: summarize(m), Storyline: m.Storyline}
		if m.Trailer != nil {
			lm.Trailer = m.Trailer.URL
		}
		out = append(out, lm)
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"movies": out})
}

// movieDetail is the full public shape of a movie.
type movieDetail struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Storyline   string              `json:"storyline"`
	Director    string              `json:"director"`
	ReleaseDate string              `json:"releaseDate"`
	Type        string              `json:"type"`
	Genres      []string            `json:"genres"`
	Tags        []string            `json:"tags"`
	Cast        []models.CastMember `json:"cast"`
	Language    string              `json:"language"`
	Poster      string              `json:"poster,omitempty"`
	Responsive  []string            `json:"responsivePosters,omitempty"`
	Trailer     string              `json:"trailer,omitempty"`
	Reviews     any                 `json:"reviews"`
}

// HandleSingleMovie handles GET /movie/single/{movieId}, returning the movie
// with its aggregated rating.
func (h *Handler) HandleSingleMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieId"))
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

	agg, err := h.Reviews.AverageRating(r.Context(), movieID)
	if err != nil {
		h.Log.Error("aggregate ratings", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	detail := movieDetail{
		ID:          movie.ID.Hex(),
		Title:       movie.Title,
		Storyline:   movie.Storyline,
		Director:    movie.Director,
		ReleaseDate: movie.ReleaseDate.Format("2006-01-02"),
		Type:        movie.Type,
		Genres:      movie.Genres,
		Tags:        movie.Tags,
		Cast:        movie.Cast,
		Language:    movie.Language,
	}
	if movie.Poster != nil {
		detail.Poster = movie.Poster.URL
		detail.Responsive = movie.Poster.Responsive
	}
	if movie.Trailer != nil {
		detail.Trailer = movie.Trailer.URL
	}
	if agg != nil {
		detail.Reviews = agg
	} else {
		detail.Reviews = struct{}{}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"movie": detail})
}

// HandleTopRated handles GET /movie/top-rated?type=. The type defaults to
// "Movie". Each entry carries its aggregated rating.
func (h *Handler) HandleTopRated(w http.ResponseWriter, r *http.Request) {
	movieType := r.URL.Query().Get("type")
	if movieType == "" {
		movieType = models.TypeMovie
	}
	switch movieType {
	case models.TypeMovie, models.TypeWebSeries, models.TypeDocumentary:
	default:
		httpjson.Error(w, http.StatusBadRequest, "Invalid movie type")
		return
	}

	topRated, err := h.Movies.TopRatedByType(r.Context(), movieType)
	if err != nil {
		h.Log.Error("top rated", zap.String("type", movieType), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type ratedSummary struct {
		movieSummary
		Reviews any `json:"reviews"`
	}
	out := make([]ratedSummary, 0, len(topRated))
	for i := range topRated {
		m := &topRated[i]
		rs := ratedSummary{movieSummary: summarize(m), Reviews: struct{}{}}
		agg, err := h.Reviews.AverageRating(r.Context(), m.ID)
		if err != nil {
			h.Log.Error("aggregate ratings", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if agg != nil {
			rs.Reviews = agg
		}
		out = append(out, rs)
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"movies": out})
}

// HandleAllMovies handles GET /movie/all-movies?pageNo=&limit=, the admin
// catalog listing.
func (h *Handler) HandleAllMovies(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "pageNo", 1)
	limit := queryInt(r, "limit", moviestore.DefaultPageSize)

	all, err := h.Movies.All(r.Context(), page, limit)
	if err != nil {
		h.Log.Error("list movies", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type adminMovie struct {
		movieSummary
		Status    string `json:"status"`
		Storyline string `json:"storyline"`
	}
	out := make([]adminMovie, 0, len(all))
	for i := range all {
		m := &all[i]
		status := "private"
		if m.Trailer != nil && m.Poster != nil {
			status = "public"
		}
		out = append(out, adminMovie{
			movieSummary: summarize(m),
			Status:       status,
			Storyline:    m.Storyline,
		})
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"movies": out})
}

// HandleMovieNames handles POST /movie/get-movie-names-list, resolving ids
// to titles in one query.
func (h *Handler) HandleMovieNames(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieIDs []string `json:"movieIds"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.MovieIDs))
	seen := make(map[primitive.ObjectID]struct{}, len(req.MovieIDs))
	for _, raw := range req.MovieIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "Invalid movie id")
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	refs, err := h.Movies.TitlesByIDs(r.Context(), ids)
	if err != nil {
		h.Log.Error("titles by ids", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(refs) != len(ids) {
		httpjson.Error(w, http.StatusNotFound, "Movie not found")
		return
	}

	type nameRef struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	out := make([]nameRef, 0, len(refs))
	for _, ref := range refs {
		out = append(out, nameRef{ID: ref.ID.Hex(), Title: ref.Title})
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"movies": out})
}

func queryInt(r *http.Request, key string, fallback int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
