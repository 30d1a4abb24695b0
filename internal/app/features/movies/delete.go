package movies

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteMovie handles DELETE /movie/{movieID}. Remote media is
// released first; the database mutation is aborted unless every release is
// confirmed. The movie, its reviews and their vote records then go away
// together.
func (h *Handler) HandleDeleteMovie(w http.ResponseWriter, r *http.Request) {
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

	if movie.Poster != nil && movie.Poster.PublicID != "" {
		if err := h.Media.Destroy(r.Context(), movie.Poster.PublicID, media.KindImage); err != nil {
			h.Log.Error("release poster", zap.String("public_id", movie.Poster.PublicID), zap.Error(err))
			httpjson.Error(w, releaseStatus(err), "Could not remove poster from cloud!")
			return
		}
	}
	if movie.Trailer == nil || movie.Trailer.PublicID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Trailer not found on cloud!")
		return
	}
	if err := h.Media.Destroy(r.Context(), movie.Trailer.PublicID, media.KindVideo); err != nil {
		h.Log.Error("release trailer", zap.String("public_id", movie.Trailer.PublicID), zap.Error(err))
		httpjson.Error(w, releaseStatus(err), "Could not remove trailer from cloud!")
		return
	}

	err = h.Txn(r.Context(), func(ctx context.Context) error {
		reviewIDs, err := h.Reviews.IDsByMovie(ctx, movieID)
		if err != nil {
			return err
		}
		if err := h.Votes.DeleteByReviews(ctx, reviewIDs); err != nil {
			return err
		}
		if err := h.Reviews.DeleteByMovie(ctx, movieID); err != nil {
			return err
		}
		return h.Movies.Delete(ctx, movieID)
	})
	if err != nil {
		h.Log.Error("cascade delete movie", zap.String("movie_id", movieID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Message(w, http.StatusOK, "Movie removed successfully!")
}

// releaseStatus maps a failed remote release: an unconfirmed release is the
// request's fault (400), a transport failure is ours (500).
func releaseStatus(err error) int {
	if errors.Is(err, media.ErrNotConfirmed) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// destroyAsset is best-effort cleanup for an asset that would otherwise
// leak; failures are only logged.
func (h *Handler) destroyAsset(r *http.Request, publicID, kind string) {
	if publicID == "" {
		return
	}
	if err := h.Media.Destroy(r.Context(), publicID, kind); err != nil {
		h.Log.Error("cleanup media asset",
			zap.String("public_id", publicID),
			zap.String("kind", kind),
			zap.Error(err))
	}
}
