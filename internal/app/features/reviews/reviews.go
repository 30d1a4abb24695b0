package reviews

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/timeouts"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type reviewBody struct {
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
}

func (b *reviewBody) validate() string {
	if b.Rating < 1 || b.Rating > 10 {
		return "Rating must be a number between 1 and 10"
	}
	if strings.TrimSpace(b.Content) == "" {
		return "Review content cannot be empty"
	}
	return ""
}

// HandleAdd handles POST /review/add/{movieId}. The review insert and the
// movie's review-list append commit together.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	owner, ok := sessionObjectID(w, r)
	if !ok {
		return
	}
	movieID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "movieId"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	var req reviewBody
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	content := sanitizer.Sanitize(strings.TrimSpace(req.Content))

	if _, err := h.Movies.GetByID(r.Context(), movieID); err != nil {
		if errors.Is(err, moviestore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Movie not found")
			return
		}
		h.Log.Error("load movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	tagCtx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	tag := h.tagSentiment(tagCtx, content)
	cancel()

	var created models.Review
	err = h.Txn(r.Context(), func(ctx context.Context) error {
		var err error
		created, err = h.Reviews.Create(ctx, models.Review{
			Owner:       owner,
			ParentMovie: movieID,
			Rating:      req.Rating,
			Content:     content,
			ReviewTag:   tag,
		})
		if err != nil {
			return err
		}
		return h.Movies.PushReview(ctx, movieID, created.ID)
	})
	if errors.Is(err, reviewstore.ErrDuplicate) {
		httpjson.Error(w, http.StatusConflict, "Invalid request, review is already there!")
		return
	}
	if err != nil {
		h.Log.Error("add review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]any{
		"review": map[string]any{
			"id":        created.ID.Hex(),
			"rating":    created.Rating,
			"content":   created.Content,
			"reviewTag": created.ReviewTag,
		},
		"message": "Your review has been added!",
	})
}

// HandleUpdate handles PATCH /review/update/{reviewID}. Only the owner can
// edit, and the sentiment tag is recomputed for the new content.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, ok := sessionObjectID(w, r)
	if !ok {
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	var req reviewBody
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}
	content := sanitizer.Sanitize(strings.TrimSpace(req.Content))

	tagCtx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	tag := h.tagSentiment(tagCtx, content)
	cancel()

	err = h.Reviews.UpdateOwned(r.Context(), reviewID, owner, req.Rating, content, tag)
	if errors.Is(err, reviewstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Review not found")
		return
	}
	if err != nil {
		h.Log.Error("update review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Message(w, http.StatusOK, "Your review has been updated!")
}

// HandleDelete handles DELETE /review/delete/{reviewID}. The movie's
// review-list entry goes first so a partial failure never leaves a dangling
// reference; the review's vote records are purged with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := sessionObjectID(w, r)
	if !ok {
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid review id")
		return
	}

	review, err := h.Reviews.GetByID(r.Context(), reviewID)
	if errors.Is(err, reviewstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Review not found")
		return
	}
	if err != nil {
		h.Log.Error("load review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if review.Owner != owner {
		httpjson.Error(w, http.StatusNotFound, "Review not found")
		return
	}

	err = h.Txn(r.Context(), func(ctx context.Context) error {
		if err := h.Movies.PullReview(ctx, reviewID); err != nil {
			return err
		}
		if err := h.Votes.DeleteByReviews(ctx, []primitive.ObjectID{reviewID}); err != nil {
			return err
		}
		return h.Reviews.Delete(ctx, reviewID)
	})
	if err != nil {
		h.Log.Error("delete review", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Message(w, http.StatusOK, "Review removed successfully!")
}

// HandleByMovie handles GET /review/get-reviews-by-movie/{movieId}.
func (h *Handler) HandleByMovie(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.Reviews.ByMovie(r.Context(), movieID)
	if err != nil {
		h.Log.Error("reviews by movie", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"movie":   movie.Title,
		"reviews": list,
	})
}

// sessionObjectID extracts the authenticated user's ObjectID, writing a 401
// when absent or malformed.
func sessionObjectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}
