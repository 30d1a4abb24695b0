package movies

import (
	"errors"
	"net/http"

	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleLikeMovie handles POST /movie/like-movie. A movie can be liked once
// per user; a repeat is a conflict.
func (h *Handler) HandleLikeMovie(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		MovieID string `json:"movieId"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	movieID, err := primitive.ObjectIDFromHex(req.MovieID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	// The movie must exist before it can be liked.
	if _, err := h.Movies.GetByID(r.Context(), movieID); err != nil {
		if errors.Is(err, moviestore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Movie not found")
			return
		}
		h.Log.Error("load movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch err := h.Users.AddLikedMovie(r.Context(), userID, movieID); {
	case errors.Is(err, userstore.ErrAlreadyLiked):
		httpjson.Error(w, http.StatusConflict, "You have already liked this movie!")
	case errors.Is(err, userstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "User not found")
	case err != nil:
		h.Log.Error("like movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
	default:
		httpjson.Message(w, http.StatusOK, "Movie added to your liked list!")
	}
}
